package auth

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"regexp"
	"time"

	"gorm.io/gorm"

	"github.com/globalmarket/backend/internal/hash"
	"github.com/globalmarket/backend/internal/httperr"
	"github.com/globalmarket/backend/internal/models"
)

// tokenResendWindow is the minimum gap between two token-issuance requests
// for the same email.
const tokenResendWindow = 15 * time.Minute

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

type Mailer interface {
	Send(to, subject, htmlBody, plainText string) error
}

type EmailChecker interface {
	Check(ctx context.Context, email string) (bool, error)
}

type Credentials struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Service struct {
	DB          *gorm.DB
	Mailer      Mailer
	Checker     EmailChecker
	FrontendURL string

	// now is swappable in tests to step over the resend window.
	Now func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *Service) baseUserData(ctx context.Context, creds Credentials) (*models.User, error) {
	if !emailPattern.MatchString(creds.Email) {
		return nil, httperr.BadRequest("you have entered an invalid email")
	}

	ok, err := s.Checker.Check(ctx, creds.Email)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, httperr.Conflict("email %s is not valid to use in our environment", creds.Email)
	}

	if taken, err := s.usernameTaken(creds.Username); err != nil {
		return nil, err
	} else if taken {
		return nil, httperr.Conflict("username %s is not available, please try another one", creds.Username)
	}

	if taken, err := s.emailTaken(creds.Email); err != nil {
		return nil, err
	} else if taken {
		return nil, httperr.Conflict("email %s is not available, please try another one", creds.Email)
	}

	salt, err := hash.NewSalt()
	if err != nil {
		return nil, err
	}
	passwordHash, err := hash.HashPassword(creds.Password, salt)
	if err != nil {
		return nil, err
	}

	return &models.User{
		Username:     creds.Username,
		Email:        creds.Email,
		Salt:         salt,
		PasswordHash: passwordHash,
	}, nil
}

// SignUpUser registers a regular user, creates the verification token and
// sends the verification email.
func (s *Service) SignUpUser(ctx context.Context, creds Credentials) (*models.User, error) {
	user, err := s.baseUserData(ctx, creds)
	if err != nil {
		return nil, err
	}
	user.Roles = []string{models.RoleUser}
	if err := s.DB.Create(user).Error; err != nil {
		return nil, err
	}

	profile := models.Profile{UserID: user.ID}
	if err := s.DB.Create(&profile).Error; err != nil {
		return nil, err
	}
	user.ProfileID = &profile.ID
	if err := s.DB.Save(user).Error; err != nil {
		return nil, err
	}

	if _, err := s.CreateEmailToken(user.Email); err != nil {
		return nil, err
	}
	if err := s.SendEmailVerification(user.Email); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) SignUpAdmin(ctx context.Context, creds Credentials) (*models.User, error) {
	admin, err := s.baseUserData(ctx, creds)
	if err != nil {
		return nil, err
	}
	admin.Roles = []string{models.RoleWeakAdmin, models.RoleAdmin}
	if err := s.DB.Create(admin).Error; err != nil {
		return nil, err
	}
	return admin, nil
}

func (s *Service) SignIn(email, password string) (*models.User, error) {
	if !emailPattern.MatchString(email) {
		return nil, httperr.BadRequest("invalid email signature")
	}

	var user models.User
	if err := s.DB.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.BadRequest("invalid email or password")
		}
		return nil, err
	}
	if !hash.CheckPassword(user.PasswordHash, password, user.Salt) {
		return nil, httperr.BadRequest("invalid email or password")
	}
	return &user, nil
}

func (s *Service) SignInAdmin(email, password string) (*models.User, error) {
	user, err := s.SignIn(email, password)
	if err != nil {
		return nil, err
	}
	if !user.HasRole(models.RoleAdmin) && !user.HasRole(models.RoleWeakAdmin) {
		return nil, httperr.BadRequest("invalid email or password")
	}
	return user, nil
}

func sixDigitToken() string {
	return fmt.Sprintf("%06d", rand.IntN(900000)+100000)
}

// CreateEmailToken issues a fresh verification token unless one was issued
// within the resend window.
func (s *Service) CreateEmailToken(email string) (*models.EmailVerification, error) {
	var existing models.EmailVerification
	err := s.DB.Where("email = ?", email).First(&existing).Error
	switch {
	case err == nil:
		if s.now().Sub(existing.Timestamp) < tokenResendWindow {
			return nil, httperr.Conflict("a verification email was sent recently, try again later")
		}
		existing.Token = sixDigitToken()
		existing.Timestamp = s.now()
		if err := s.DB.Save(&existing).Error; err != nil {
			return nil, err
		}
		return &existing, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		verification := models.EmailVerification{
			Email:     email,
			Token:     sixDigitToken(),
			Timestamp: s.now(),
		}
		if err := s.DB.Create(&verification).Error; err != nil {
			return nil, err
		}
		return &verification, nil
	default:
		return nil, err
	}
}

func (s *Service) SendEmailVerification(email string) error {
	var verification models.EmailVerification
	if err := s.DB.Where("email = ?", email).First(&verification).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return httperr.Conflict("no verification token was requested for %s", email)
		}
		return err
	}

	link := fmt.Sprintf("%s/verify-email/%s", s.FrontendURL, verification.Token)
	html := fmt.Sprintf(
		"<h1>Hi User</h1><h2>Thanks for your registration</h2><p>Please verify your email by clicking <a href=%q>this link</a></p>",
		link,
	)
	return s.Mailer.Send(email, "Verify Email", html, "Verify Email: "+link)
}

// VerifyEmail consumes the token: the user is marked verified and the token
// row is deleted, so it cannot be replayed.
func (s *Service) VerifyEmail(token string) (*models.User, error) {
	var verification models.EmailVerification
	if err := s.DB.Where("token = ?", token).First(&verification).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.BadRequest("verification code is not valid")
		}
		return nil, err
	}

	var user models.User
	if err := s.DB.Where("email = ?", verification.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.NotFound("User", verification.Email)
		}
		return nil, err
	}

	user.EmailVerified = true
	if err := s.DB.Save(&user).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Delete(&verification).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Service) CreateForgottenPasswordToken(email string) (*models.ForgottenPassword, error) {
	var existing models.ForgottenPassword
	err := s.DB.Where("email = ?", email).First(&existing).Error
	switch {
	case err == nil:
		if s.now().Sub(existing.Timestamp) < tokenResendWindow {
			return nil, httperr.Conflict("a reset password request has been sent recently, check your email inbox")
		}
		existing.NewPasswordToken = sixDigitToken()
		existing.Timestamp = s.now()
		if err := s.DB.Save(&existing).Error; err != nil {
			return nil, err
		}
		return &existing, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		forgotten := models.ForgottenPassword{
			Email:            email,
			NewPasswordToken: sixDigitToken(),
			Timestamp:        s.now(),
		}
		if err := s.DB.Create(&forgotten).Error; err != nil {
			return nil, err
		}
		return &forgotten, nil
	default:
		return nil, err
	}
}

func (s *Service) SendForgottenPasswordEmail(email string) error {
	user, err := s.FindUserByEmail(email)
	if err != nil {
		return err
	}

	token, err := s.CreateForgottenPasswordToken(user.Email)
	if err != nil {
		return err
	}

	link := fmt.Sprintf("%s/reset-password/%s", s.FrontendURL, token.NewPasswordToken)
	html := fmt.Sprintf(
		"<h1>Hi User</h1><h2>You have requested to reset your password</h2><p>Please click <a href=%q>this link</a> to change it</p>",
		link,
	)
	return s.Mailer.Send(email, "Reset Your Password", html, "Reset Your Password: "+link)
}

// SetNewPassword consumes the reset token and re-hashes the password with
// the user's stored salt.
func (s *Service) SetNewPassword(token, newPassword string) error {
	if token == "" {
		return httperr.BadRequest("you have entered an invalid token")
	}

	var forgotten models.ForgottenPassword
	if err := s.DB.Where("new_password_token = ?", token).First(&forgotten).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return httperr.BadRequest("you did not send a forgot password request, try to send a new one")
		}
		return err
	}

	user, err := s.FindUserByEmail(forgotten.Email)
	if err != nil {
		return err
	}
	passwordHash, err := hash.HashPassword(newPassword, user.Salt)
	if err != nil {
		return err
	}
	user.PasswordHash = passwordHash
	if err := s.DB.Save(user).Error; err != nil {
		return err
	}
	return s.DB.Delete(&forgotten).Error
}

func (s *Service) FindUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.DB.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.NotFound("User", email)
		}
		return nil, err
	}
	return &user, nil
}

func (s *Service) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.NotFound("User", id)
		}
		return nil, err
	}
	return &user, nil
}

func (s *Service) GetSystemUsers() ([]models.User, error) {
	var users []models.User
	err := s.DB.Order("id ASC").Find(&users).Error
	return users, err
}

func (s *Service) GetTotalUsers() (int64, error) {
	var total int64
	err := s.DB.Model(&models.User{}).Count(&total).Error
	return total, err
}

func (s *Service) EditUserRoles(id uint, roles []string) (*models.User, error) {
	user, err := s.GetUserByID(id)
	if err != nil {
		return nil, err
	}
	user.Roles = roles
	if err := s.DB.Save(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUserAccount removes the user together with their profile, cart and
// cart line items.
func (s *Service) DeleteUserAccount(user *models.User) error {
	if user.CartID != nil {
		if err := s.DB.Where("cart_id = ?", *user.CartID).
			Delete(&models.CartProduct{}).Error; err != nil {
			return err
		}
		if err := s.DB.Delete(&models.Cart{}, *user.CartID).Error; err != nil {
			return err
		}
	}
	if err := s.DB.Where("user_id = ?", user.ID).
		Delete(&models.Profile{}).Error; err != nil {
		return err
	}
	return s.DB.Delete(&models.User{}, user.ID).Error
}

func (s *Service) usernameTaken(username string) (bool, error) {
	var count int64
	err := s.DB.Model(&models.User{}).Where("username = ?", username).Count(&count).Error
	return count >= 1, err
}

func (s *Service) emailTaken(email string) (bool, error) {
	var count int64
	err := s.DB.Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	return count >= 1, err
}
