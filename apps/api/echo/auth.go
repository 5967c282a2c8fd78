package echoapi

import (
	"context"
	"sync"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/darasahq/darasa/core"
	"github.com/darasahq/darasa/core/access"
	"github.com/darasahq/darasa/core/user"
)

var (
	// appJWTConfig is the default JWT auth middleware config.
	appJWTConfig = middleware.JWTConfig{
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    "userToken",
		Claims:        new(Claims),
	}
	contextUserKey = "user"

	conf *core.Config

	// identityTTL bounds how long a resolved user may be reused before a
	// fresh lookup; role or deactivation changes surface within this window.
	identityTTL = 5 * time.Minute
)

func initAuth(c *core.Config) {
	conf = c
	appJWTConfig.SigningKey = c.SecretKey
}

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	OrigIssuedAt int64  `json:"oriat,omitempty"`
	Name         string `json:"name,omitempty"`
	Email        string `json:"email,omitempty"`
	IsStudent    bool   `json:"is_student,omitempty"` // -> STUDENT PORTAL
	IsTeacher    bool   `json:"is_teacher,omitempty"` // -> TEACHER PORTAL
	IsAdmin      bool   `json:"is_admin,omitempty"`   // -> ADMIN PORTAL
	Role         string `json:"role,omitempty"`
}

func (c Claims) principal() *access.Principal {
	return &access.Principal{
		ID:    c.Subject,
		Name:  c.Name,
		Email: c.Email,
		Role:  access.Role(c.Role),
	}
}

func GetUserClaims(usr user.User, origIat ...int64) *Claims {
	now := time.Now()
	nownix := now.Unix()

	var oriat int64
	if len(origIat) > 0 {
		oriat = origIat[0]
	} else {
		oriat = nownix
	}

	claims := &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   usr.ID,
			Audience:  "Darasa",
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  nownix,
		},
		OrigIssuedAt: oriat,
		Name:         usr.Name,
		Email:        usr.Email,
		IsStudent:    usr.IsStudent(),
		IsTeacher:    usr.IsTeacher(),
		IsAdmin:      usr.IsAdmin(),
		Role:         string(usr.Role),
	}
	return claims
}

func authenticate(email, pwd string, svc user.ServiceInterface) (*Claims, error) {
	usr, err := svc.GetByEmail(email)
	if err != nil {
		// the caller maps ErrNotFound to its own response
		return nil, errors.Wrap(err, "finding user by email")
	}
	if err = usr.CheckPassword(pwd); err != nil {
		return nil, errAuthenticationFailed
	}
	if !usr.IsActive {
		return nil, errAccountDeactivated
	}
	usr, err = svc.SetLastLogin(usr)
	if err != nil {
		return nil, errors.Wrap(err, "setting lastLogin")
	}
	return GetUserClaims(usr), nil
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func GenerateToken(claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(appJWTConfig.SigningMethod)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(appJWTConfig.SigningKey)
	if err != nil {
		return "", errors.New("signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(appJWTConfig.ContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

func getContextUser(ctx echo.Context, svc user.ServiceInterface, clms ...Claims) (user.User, error) {
	if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
		return usr, nil
	}

	var claims Claims
	var err error
	if len(clms) > 0 {
		claims = clms[0]
	} else {
		claims, err = getContextClaims(ctx)
		if err != nil {
			return user.User{}, errors.Wrap(err, "getting context claims")
		}
	}

	usr, err := svc.GetByID(claims.Subject)
	if err != nil {
		return user.User{}, errors.Wrap(err, "finding user by ID")
	}
	ctx.Set(contextUserKey, usr)
	return usr, nil
}

func refreshToken(ctx echo.Context, svc user.ServiceInterface) (string, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return "", errors.Wrap(err, "getting context claims")
	}

	usr, err := getContextUser(ctx, svc, claims)
	if err != nil {
		return "", errors.Wrap(err, "getting context user")
	}

	// check if user is still active
	if !usr.IsActive {
		return "", errAccountDeactivated
	}

	// check if refresh has not expired
	expTime := time.Unix(claims.OrigIssuedAt, 0).Add(conf.Server.JWTRefreshExpirationDelta)
	if time.Now().After(expTime) {
		return "", errRefreshExpired
	}

	newClaims := GetUserClaims(usr, claims.OrigIssuedAt)
	token, err := GenerateToken(newClaims)
	return token, errors.Wrap(err, "generating token")
}

// request-scoped claims, for handing the JWT subject down to the identity provider

type claimsCtxKey struct{}

func contextWithClaims(ctx context.Context, claims Claims) context.Context {
	return context.WithValue(ctx, claimsCtxKey{}, claims)
}

func claimsFromContext(ctx context.Context) (Claims, bool) {
	claims, ok := ctx.Value(claimsCtxKey{}).(Claims)
	return claims, ok
}

type identityEntry struct {
	usr       user.User
	fetchedAt time.Time
}

// userIdentity resolves JWT subjects into principals via the user service.
// Lookups are cached for identityTTL; Logout evicts the subject so the next
// request re-resolves.
type userIdentity struct {
	svc user.ServiceInterface

	mu    sync.Mutex
	cache map[string]identityEntry
}

var _ access.IdentityProvider = (*userIdentity)(nil)

func newUserIdentity(svc user.ServiceInterface) *userIdentity {
	return &userIdentity{
		svc:   svc,
		cache: make(map[string]identityEntry),
	}
}

func (ip *userIdentity) GetIdentity(ctx context.Context) (*access.Principal, error) {
	claims, ok := claimsFromContext(ctx)
	if !ok || claims.Subject == "" {
		return nil, nil
	}

	usr, err := ip.lookup(claims.Subject)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return nil, nil
		}
		return nil, errors.Wrap(err, "resolving identity")
	}
	if !usr.IsActive {
		return nil, nil
	}
	return usr.Principal(), nil
}

func (ip *userIdentity) Logout(ctx context.Context) error {
	claims, ok := claimsFromContext(ctx)
	if !ok || claims.Subject == "" {
		return errUnauthorized
	}
	ip.mu.Lock()
	delete(ip.cache, claims.Subject)
	ip.mu.Unlock()
	return nil
}

func (ip *userIdentity) lookup(id string) (user.User, error) {
	ip.mu.Lock()
	entry, ok := ip.cache[id]
	ip.mu.Unlock()
	if ok && time.Since(entry.fetchedAt) < identityTTL {
		return entry.usr, nil
	}

	usr, err := ip.svc.GetByID(id)
	if err != nil {
		return user.User{}, err
	}

	ip.mu.Lock()
	ip.cache[id] = identityEntry{usr: usr, fetchedAt: time.Now()}
	ip.mu.Unlock()
	return usr, nil
}
