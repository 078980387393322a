package services

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	userrepo "github.com/hittalaget/hittalaget-backend/internal/data/repos/user"
	"github.com/hittalaget/hittalaget-backend/internal/domain"
	"github.com/hittalaget/hittalaget-backend/internal/normalization"
	"github.com/hittalaget/hittalaget-backend/internal/pkg/dbctx"
	"github.com/hittalaget/hittalaget-backend/internal/platform/apierr"
	"github.com/hittalaget/hittalaget-backend/internal/platform/logger"
	"github.com/hittalaget/hittalaget-backend/internal/requestdata"
)

// JWTClaims carries the signed session identity. Username rides along so
// request handling never needs a user lookup just to know who is talking.
type JWTClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type RegisterInput struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Birthday  string `json:"birthday"`
}

type AuthService interface {
	RegisterUser(dbc dbctx.Context, in RegisterInput) (*domain.User, error)
	LoginUser(dbc dbctx.Context, email, password string) (string, *domain.User, error)
	ChangePassword(dbc dbctx.Context, currentPassword, newPassword string) error
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	GetAccessTTL() time.Duration
}

type authService struct {
	db           *gorm.DB
	log          *logger.Logger
	users        userrepo.Repo
	jwtSecretKey string
	accessTTL    time.Duration
}

func NewAuthService(db *gorm.DB, baseLog *logger.Logger, users userrepo.Repo, jwtSecretKey string, accessTTL time.Duration) AuthService {
	return &authService{
		db:           db,
		log:          baseLog.With("service", "AuthService"),
		users:        users,
		jwtSecretKey: jwtSecretKey,
		accessTTL:    accessTTL,
	}
}

func (as *authService) RegisterUser(dbc dbctx.Context, in RegisterInput) (*domain.User, error) {
	username := normalization.Username(in.Username)
	email := normalization.Email(in.Email)
	firstName := normalization.ParseInputString(in.FirstName)
	lastName := normalization.ParseInputString(in.LastName)

	if username == "" || email == "" {
		return nil, apierr.Validation("username and email are required")
	}
	if len(in.Password) < 8 {
		return nil, apierr.Validation("password must be at least 8 characters")
	}
	birthday, err := time.Parse("2006-01-02", in.Birthday)
	if err != nil {
		return nil, apierr.Validation("birthday must be on the form YYYY-MM-DD")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var created *domain.User
	err = as.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		repoCtx := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}

		if taken, err := as.users.UsernameExists(repoCtx, username); err != nil {
			return err
		} else if taken {
			return apierr.Conflict("username already taken")
		}
		if taken, err := as.users.EmailExists(repoCtx, email); err != nil {
			return err
		} else if taken {
			return apierr.Conflict("email already registered")
		}

		user := &domain.User{
			ID:        uuid.New(),
			Username:  username,
			Email:     email,
			Password:  string(hashed),
			FirstName: firstName,
			LastName:  lastName,
			Birthday:  birthday,
		}
		rows, err := as.users.Create(repoCtx, []*domain.User{user})
		if err != nil {
			if apierr.IsDuplicateKey(err) {
				return apierr.Conflict("username or email already taken")
			}
			return err
		}
		created = rows[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	as.log.Info("user registered", "user_id", created.ID)
	return created, nil
}

func (as *authService) LoginUser(dbc dbctx.Context, email, password string) (string, *domain.User, error) {
	email = normalization.Email(email)

	user, err := as.users.GetByEmail(dbc, email)
	if err != nil {
		return "", nil, err
	}
	if user == nil {
		return "", nil, apierr.Unauthenticated("invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, apierr.Unauthenticated("invalid email or password")
	}

	token, err := as.generateAccessToken(user)
	if err != nil {
		return "", nil, fmt.Errorf("generate access token: %w", err)
	}
	return token, user, nil
}

func (as *authService) ChangePassword(dbc dbctx.Context, currentPassword, newPassword string) error {
	rd, err := caller(dbc)
	if err != nil {
		return err
	}
	if len(newPassword) < 8 {
		return apierr.Validation("password must be at least 8 characters")
	}

	return as.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		repoCtx := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}

		rows, err := as.users.GetByIDs(repoCtx, []uuid.UUID{rd.UserID})
		if err != nil {
			return err
		}
		if len(rows) == 0 || rows[0] == nil {
			return apierr.Unauthenticated("unknown user")
		}
		user := rows[0]
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(currentPassword)); err != nil {
			return apierr.Validation("current password is incorrect")
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		return as.users.UpdateFields(repoCtx, user.ID, map[string]interface{}{
			"password": string(hashed),
		})
	})
}

func (as *authService) generateAccessToken(user *domain.User) (string, error) {
	claims := JWTClaims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, nil
	}
	parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil {
		return ctx, fmt.Errorf("parse token: %w", err)
	}
	claims, ok := parsedToken.Claims.(*JWTClaims)
	if !ok || !parsedToken.Valid {
		return ctx, fmt.Errorf("invalid or expired token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, fmt.Errorf("invalid user id in token: %w", err)
	}
	rd := &requestdata.RequestData{
		TokenString: tokenString,
		UserID:      userID,
		Username:    claims.Username,
	}
	return requestdata.WithRequestData(ctx, rd), nil
}

func (as *authService) GetAccessTTL() time.Duration {
	return as.accessTTL
}
