package application

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/travelia/travel-backend/internal/domain/entity"
	repo "github.com/travelia/travel-backend/internal/domain/repository"
	"github.com/travelia/travel-backend/pkg/helpers"
	"github.com/travelia/travel-backend/pkg/mailer"
	"github.com/travelia/travel-backend/pkg/validation"
)

// IdentityService orchestrates registration, login, token lifecycle, and the
// OTP-backed recovery flows. It talks to persistence through the repository
// interfaces, delegating token mechanics to TokenIssuer and one-time-code
// mechanics to OtpManager. Pub and ES are optional; when nil the
// corresponding side effects are skipped.
type IdentityService struct {
	Repos  repo.Repositories
	UoW    repo.UnitOfWork
	Otp    *OtpManager
	Tokens *TokenIssuer
	Pub    *helpers.RabbitPublisher
	ES     *elasticsearch.Client

	AppName      string
	ESUsersIndex string
	Logger       *logrus.Logger

	validate *validator.Validate
}

func NewIdentityService(repos repo.Repositories, uow repo.UnitOfWork, otp *OtpManager, tokens *TokenIssuer,
	pub *helpers.RabbitPublisher, es *elasticsearch.Client, appName, esUsersIndex string, logger *logrus.Logger) *IdentityService {
	return &IdentityService{
		Repos:        repos,
		UoW:          uow,
		Otp:          otp,
		Tokens:       tokens,
		Pub:          pub,
		ES:           es,
		AppName:      appName,
		ESUsersIndex: esUsersIndex,
		Logger:       logger,
		validate:     validation.New(),
	}
}

// RegisterInput carries everything a registration may need. The role-profile
// fields are forwarded per role explicitly; nothing outside the selected
// subset reaches the profile row.
type RegisterInput struct {
	Email     string      `json:"email" validate:"required,email"`
	Password  string      `json:"password" validate:"required,pwd"`
	FirstName string      `json:"first_name" validate:"required"`
	LastName  string      `json:"last_name"`
	Phone     string      `json:"phone" validate:"omitempty,phone"`
	Role      entity.Role `json:"role" validate:"required,oneof=standard agent corporate"`

	// Agent
	AgencyName string `json:"agency_name" validate:"required_if=Role agent"`
	LicenseNo  string `json:"license_no" validate:"required_if=Role agent"`

	// Corporate
	CompanyName  string `json:"company_name" validate:"required_if=Role corporate"`
	TaxID        string `json:"tax_id" validate:"required_if=Role corporate"`
	BillingEmail string `json:"billing_email" validate:"omitempty,email"`

	Meta entity.SessionMeta `json:"-"`
}

// AuthResult is what Register hands back: the resolved account, the bearer
// token, and its expiry.
type AuthResult struct {
	Account   *entity.Account
	Token     string
	ExpiresAt time.Time
}

// LoginResult is the successful outcome of a credentials check.
type LoginResult struct {
	UserID    string
	Email     string
	Token     string
	ExpiresAt time.Time
}

// Register creates the user, its role profile, the initial email-verification
// code, and the first session as one atomic unit: if anything fails after the
// user insert, every row rolls back and a half-registered user is never
// observable. A duplicate email surfaces as ErrAlreadyExists.
func (s *IdentityService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, &ValidationError{Details: validation.ToDetails(err)}
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	u := &entity.User{
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		Password:  hash,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Phone:     in.Phone,
	}

	var (
		acct  *entity.Account
		code  *entity.OtpCode
		token string
		exp   time.Time
	)
	txErr := s.UoW.WithinTx(ctx, func(ctx context.Context, r repo.Repositories) error {
		if err := r.Users.Create(ctx, u); err != nil {
			return err
		}

		switch in.Role {
		case entity.RoleAgent:
			p := &entity.AgentProfile{UserID: u.ID, AgencyName: in.AgencyName, LicenseNo: in.LicenseNo}
			if err := r.Profiles.CreateAgent(ctx, p); err != nil {
				return err
			}
			acct = &entity.Account{Role: entity.RoleAgent, User: u, Agent: p}
		case entity.RoleCorporate:
			p := &entity.CorporateProfile{UserID: u.ID, CompanyName: in.CompanyName, TaxID: in.TaxID, BillingEmail: in.BillingEmail}
			if err := r.Profiles.CreateCorporate(ctx, p); err != nil {
				return err
			}
			acct = &entity.Account{Role: entity.RoleCorporate, User: u, Corporate: p}
		default:
			acct = &entity.Account{Role: entity.RoleStandard, User: u}
		}

		var err error
		if code, err = s.Otp.Issue(ctx, r.Otps, u.ID, entity.OtpKindEmailVerification); err != nil {
			return err
		}
		token, exp, err = s.Tokens.Issue(ctx, r.Sessions, u, in.Meta)
		return err
	})
	if txErr != nil {
		switch {
		case errors.Is(txErr, repo.ErrDuplicate), errors.Is(txErr, ErrAlreadyExists):
			return nil, ErrAlreadyExists
		case errors.Is(txErr, ErrStorage):
			return nil, txErr
		default:
			return nil, storageErr(txErr)
		}
	}

	s.enqueueOtpEmail(ctx, u, code, mailer.TemplateVerifyEmail)
	s.indexUser(ctx, u)

	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"user_id": u.ID, "role": in.Role}).Info("user registered")
	}
	return &AuthResult{Account: acct, Token: token, ExpiresAt: exp}, nil
}

// Login verifies email and password and issues a token. An unknown email and
// a wrong password fail identically with ErrInvalidCredentials.
func (s *IdentityService) Login(ctx context.Context, email, password string, meta entity.SessionMeta) (*LoginResult, error) {
	u, err := s.Repos.Users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, storageErr(err)
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, ErrInvalidCredentials
	}

	token, exp, err := s.Tokens.Issue(ctx, s.Repos.Sessions, u, meta)
	if err != nil {
		return nil, err
	}
	return &LoginResult{UserID: u.ID, Email: u.Email, Token: token, ExpiresAt: exp}, nil
}

// Logout revokes the session matching the token. A token with no session is
// success.
func (s *IdentityService) Logout(ctx context.Context, token string) error {
	return s.Tokens.Revoke(ctx, s.Repos.Sessions, token)
}

// RefreshToken issues a fresh token for the user asserted by a still-valid
// token. The old session row is not revoked here; it lingers until its
// expiry or an explicit logout.
func (s *IdentityService) RefreshToken(ctx context.Context, token string, meta entity.SessionMeta) (*LoginResult, error) {
	uid, err := s.Tokens.Decode(token)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	u, err := s.Repos.Users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, storageErr(err)
	}

	fresh, exp, err := s.Tokens.Issue(ctx, s.Repos.Sessions, u, meta)
	if err != nil {
		return nil, err
	}
	return &LoginResult{UserID: u.ID, Email: u.Email, Token: fresh, ExpiresAt: exp}, nil
}

// ValidateToken is a pure boolean pass-through to the issuer. It never
// returns an error; malformed or expired input is simply false.
func (s *IdentityService) ValidateToken(token string) bool {
	return s.Tokens.Validate(token)
}

// GetUserInfo resolves the account behind a token, with corporate taking
// precedence over agent over the base user. A bad token is
// ErrInvalidCredentials; a decoded token whose user row is gone yields
// (nil, nil).
func (s *IdentityService) GetUserInfo(ctx context.Context, token string) (*entity.Account, error) {
	uid, err := s.Tokens.Decode(token)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	u, err := s.Repos.Users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, nil
		}
		return nil, storageErr(err)
	}

	corp, err := s.Repos.Profiles.GetCorporateByUserID(ctx, uid)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return nil, storageErr(err)
	}
	agent, err := s.Repos.Profiles.GetAgentByUserID(ctx, uid)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return nil, storageErr(err)
	}

	return entity.NewAccount(u, agent, corp), nil
}

// ChangePassword verifies the old password for the token's user and persists
// a hash of the new one. A wrong old password is ErrInvalidCredentials, same
// as a bad token.
func (s *IdentityService) ChangePassword(ctx context.Context, token, oldPassword, newPassword string) error {
	uid, err := s.Tokens.Decode(token)
	if err != nil {
		return ErrInvalidCredentials
	}
	if err := s.checkPassword(newPassword); err != nil {
		return err
	}
	u, err := s.Repos.Users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrInvalidCredentials
		}
		return storageErr(err)
	}
	if !helpers.CompareHashAndPassword(u.Password, oldPassword) {
		return ErrInvalidCredentials
	}

	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.Repos.Users.UpdatePassword(ctx, u.ID, hash); err != nil {
		return storageErr(err)
	}
	return nil
}

// RequestPasswordReset issues a password-reset code for the account behind
// the email. An unknown email returns success without creating anything, so
// the endpoint cannot be used to enumerate accounts.
func (s *IdentityService) RequestPasswordReset(ctx context.Context, email string) error {
	u, err := s.Repos.Users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			if s.Logger != nil {
				s.Logger.WithField("email", email).Info("password reset requested for unknown email")
			}
			return nil
		}
		return storageErr(err)
	}

	code, err := s.Otp.Issue(ctx, s.Repos.Otps, u.ID, entity.OtpKindPasswordReset)
	if err != nil {
		return err
	}
	s.enqueueOtpEmail(ctx, u, code, mailer.TemplatePasswordReset)
	return nil
}

// VerifyPasswordReset matches a password-reset code without knowing the user
// up front, sets the new password on the code's owner, and consumes the
// code. Any miss is ErrInvalidOrExpiredOtp.
func (s *IdentityService) VerifyPasswordReset(ctx context.Context, code, newPassword string) error {
	if err := s.checkPassword(newPassword); err != nil {
		return err
	}
	c, err := s.Otp.FindValid(ctx, s.Repos.Otps, "", entity.OtpKindPasswordReset, code)
	if err != nil {
		return err
	}

	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.Repos.Users.UpdatePassword(ctx, c.UserID, hash); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrInvalidOrExpiredOtp
		}
		return storageErr(err)
	}
	return s.Otp.Consume(ctx, s.Repos.Otps, c.ID)
}

// VerifyEmail matches an email-verification code, flips the owner's verified
// flag, and consumes the code.
func (s *IdentityService) VerifyEmail(ctx context.Context, code string) error {
	c, err := s.Otp.FindValid(ctx, s.Repos.Otps, "", entity.OtpKindEmailVerification, code)
	if err != nil {
		return err
	}
	if err := s.Repos.Users.SetVerified(ctx, c.UserID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrInvalidOrExpiredOtp
		}
		return storageErr(err)
	}
	if err := s.Otp.Consume(ctx, s.Repos.Otps, c.ID); err != nil {
		return err
	}

	if u, uErr := s.Repos.Users.GetByID(ctx, c.UserID); uErr == nil {
		s.indexUser(ctx, u)
	}
	return nil
}

func (s *IdentityService) checkPassword(pw string) error {
	if err := s.validate.Var(pw, "required,pwd"); err != nil {
		return &ValidationError{Details: map[string]string{"new_password": "must be at least 8 characters"}}
	}
	return nil
}

// enqueueOtpEmail publishes the email job carrying the code. Delivery is
// best-effort; the flow already committed.
func (s *IdentityService) enqueueOtpEmail(ctx context.Context, u *entity.User, code *entity.OtpCode, template string) {
	if s.Pub == nil || code == nil {
		return
	}
	job := mailer.EmailJob{
		To:       u.Email,
		Template: template,
		Data: map[string]any{
			"Name":             u.FullName(),
			"AppName":          s.AppName,
			"Code":             code.Code,
			"ExpiresInMinutes": int(time.Until(code.ExpiresAt).Round(time.Minute).Minutes()),
		},
	}
	if err := s.Pub.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("enqueue email failed")
	}
}

func (s *IdentityService) indexUser(ctx context.Context, u *entity.User) {
	if s.ES == nil || s.ESUsersIndex == "" {
		return
	}
	doc := map[string]any{
		"id":          u.ID,
		"email":       u.Email,
		"first_name":  u.FirstName,
		"last_name":   u.LastName,
		"is_verified": u.IsVerified,
		"created_at":  u.CreatedAt.Format(time.RFC3339Nano),
		"updated_at":  u.UpdatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESUsersIndex, DocumentID: u.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("es index failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("user_id", u.ID).Warn("es index response error")
	}
}
