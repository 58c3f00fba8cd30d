package user

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/madrasah/darsplan/core"
)

var (
	// errors
	ErrNotFound    = errors.New("user not found")
	ErrEmailExists = errors.New("a user with this email already exists")
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...User) error
		CreateUser(ctx context.Context, usr User) (User, error)
		// UpsertUser inserts usr keyed on its ID; when a row with that ID
		// already exists the existing row wins and is returned unchanged.
		UpsertUser(ctx context.Context, usr User) (User, error)
		GetUserByID(ctx context.Context, id string) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		// UpdateUser overwrites the non-zero fields of usr; isActive is
		// applied separately so it can be flipped both ways.
		UpdateUser(ctx context.Context, usr User, isActive *bool) (User, error)
		DeleteUsersByID(ctx context.Context, ids ...string) (int, error)
	}

	Service struct {
		repo   Repository
		mail   core.EmailService
		conf   *core.Config
		logger core.Logger
	}
)

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config, logger core.Logger) *Service {
	secretKey = []byte(conf.SecretKey)
	passwordResetTimeoutDelta = conf.PasswordResetTimeoutDelta
	return &Service{
		repo:   repo,
		mail:   mailSvc,
		conf:   conf,
		logger: logger,
	}
}

func (svc *Service) CheckEmailUniqueness(email string, exclUsers ...User) error {
	if err := svc.repo.CheckEmailUniqueness(context.Background(), email, exclUsers...); err != nil {
		if errors.Cause(err) == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

// Register creates a profile for a password sign-up. The role always starts
// as RoleTeacher; promotion is a separate, admin-only operation.
func (svc *Service) Register(ctx context.Context, nu NewUser) (User, error) {
	now := time.Now().UTC()
	usr := User{
		Name:      nu.Name,
		Email:     nu.Email,
		Role:      RoleTeacher,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, err
	}
	usr, err := svc.repo.CreateUser(ctx, usr)
	if err != nil {
		return User{}, err
	}

	svc.mail.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      "Welcome!",
		TemplateName: "welcome",
		TemplateData: struct{ Name string }{usr.Name},
	})
	return usr, nil
}

// CreateUser persists a fully formed User as-is. Used by the admin CLI.
func (svc *Service) CreateUser(ctx context.Context, usr User) (User, error) {
	return svc.repo.CreateUser(ctx, usr)
}

// EnsureProfile resolves the profile for an authenticated identity, creating
// it when it does not exist yet. Creation is an upsert keyed on the user id,
// which keeps concurrent sign-ins for the same new user from racing to
// duplicate rows. When the store cannot be reached at all, a non-persisted
// profile derived from the identity metadata is returned so the caller is
// never left without a (name, role) pair.
func (svc *Service) EnsureProfile(ctx context.Context, ident Identity) (User, error) {
	usr, err := svc.repo.GetUserByID(ctx, ident.ID)
	if err == nil {
		return usr, nil
	}

	if errors.Cause(err) == ErrNotFound {
		now := time.Now().UTC()
		usr = User{
			ID:        ident.ID,
			Name:      ResolveDisplayName(ident),
			Email:     core.CleanString(ident.Email, true /* lower */),
			Role:      RoleTeacher,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if usr, err = svc.repo.UpsertUser(ctx, usr); err == nil {
			return usr, nil
		}
		// a concurrent sign-in may have won the upsert; fetch once more
		if usr, ferr := svc.repo.GetUserByID(ctx, ident.ID); ferr == nil {
			return usr, nil
		}
	}

	svc.logger.Warn(fmt.Sprintf("profile resolution falling back to identity metadata: %v", err), err)
	return User{
		ID:       ident.ID,
		Name:     ResolveDisplayName(ident),
		Email:    core.CleanString(ident.Email, true /* lower */),
		Role:     ResolveRole(""),
		IsActive: true,
	}, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *Service) Update(ctx context.Context, id string, uu UpdateUser) (User, error) {
	usr := User{
		ID:        id,
		Name:      uu.Name,
		Email:     uu.Email,
		Role:      uu.Role,
		UpdatedAt: time.Now().UTC(),
	}
	if uu.Password != "" {
		if err := usr.SetPassword(uu.Password); err != nil {
			return User{}, err
		}
	}
	return svc.repo.UpdateUser(ctx, usr, uu.IsActive)
}

// SetRole promotes or demotes a user. Used by the admin CLI.
func (svc *Service) SetRole(ctx context.Context, id, role string) (User, error) {
	usr := User{ID: id, Role: ResolveRole(role), UpdatedAt: time.Now().UTC()}
	return svc.repo.UpdateUser(ctx, usr, nil)
}

func (svc *Service) SetLastLogin(ctx context.Context, usr User) (User, error) {
	now := time.Now().UTC()
	return svc.repo.UpdateUser(ctx, User{ID: usr.ID, LastLogin: now, UpdatedAt: now}, nil)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteUsersByID(ctx, ids...)
	return err
}

// RequestPasswordReset emails a signed one-time reset link to the account
// owner. Returns ErrNotFound for unknown or deactivated accounts; callers
// must not leak that distinction to the requester.
func (svc *Service) RequestPasswordReset(ctx context.Context, email string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if !usr.IsActive {
		return ErrNotFound
	}

	token, err := MakeToken(usr)
	if err != nil {
		return errors.Wrap(err, "making reset token")
	}

	svc.mail.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      "Password Reset",
		TemplateName: "password-reset",
		TemplateData: struct {
			Name        string
			UID         string
			Token       string
			TimeoutDays int
		}{
			Name:        usr.Name,
			UID:         EncodeUID(usr),
			Token:       token,
			TimeoutDays: int(svc.conf.PasswordResetTimeoutDelta / (24 * time.Hour)),
		},
	})
	return nil
}

// ResetPassword verifies the one-time token and sets the new password.
func (svc *Service) ResetPassword(ctx context.Context, data ResetUserPassword) error {
	id, err := decodeUID(data.UID)
	if err != nil {
		return core.NewValidationError(errInvalidToken)
	}
	usr, err := svc.GetByID(ctx, id)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return core.NewValidationError(errInvalidToken)
		}
		return err
	}
	if err = verifyToken(usr, data.Token); err != nil {
		return core.NewValidationError(err)
	}

	if err = usr.SetPassword(data.Password); err != nil {
		return err
	}
	update := User{ID: usr.ID, PasswordHash: usr.PasswordHash, UpdatedAt: time.Now().UTC()}
	if _, err = svc.repo.UpdateUser(ctx, update, nil); err != nil {
		return errors.Wrap(err, "updating password")
	}
	return nil
}

// AdminSetPassword forces a new password without a token. Used by the admin CLI.
func (svc *Service) AdminSetPassword(ctx context.Context, email, pwd string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if err = usr.SetPassword(pwd); err != nil {
		return err
	}
	update := User{ID: usr.ID, PasswordHash: usr.PasswordHash, UpdatedAt: time.Now().UTC()}
	_, err = svc.repo.UpdateUser(ctx, update, nil)
	return err
}
