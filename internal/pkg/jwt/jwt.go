package jwt

import (
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Service issues and verifies the tokens this API consumes. Access tokens
// are minted by the surrounding identity subsystem with the same secret;
// this service also issues short-lived tokens for the SSE event stream,
// where EventSource cannot set an Authorization header.
type Service interface {
	GenerateAccessToken(subjectID, organizationID, branchID, role string) (token string, expiresAt int64, err error)
	GenerateSSEToken(subjectID string) (token string, expiresIn int, err error)
	ValidateSSEToken(tokenString string) (subjectID string, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	secretKey                 string
	accessTokenExpirationTime string
	tokenAuth                 *jwtauth.JWTAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime string) Service {
	return &JWTService{
		secretKey:                 secretKey,
		accessTokenExpirationTime: accessTokenExpirationTime,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func (j *JWTService) GenerateAccessToken(subjectID, organizationID, branchID, role string) (token string, expiresAt int64, err error) {
	expDuration, err := time.ParseDuration(j.accessTokenExpirationTime)
	if err != nil {
		return "", 0, err
	}
	expiresAt = time.Now().Add(expDuration).Unix()

	claims := map[string]interface{}{
		"subject_id":      subjectID,
		"organization_id": organizationID,
		"branch_id":       branchID,
		"role":            role,
		"type":            "access",
		"exp":             expiresAt,
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

// GenerateSSEToken generates a short-lived token for SSE connections
func (j *JWTService) GenerateSSEToken(subjectID string) (token string, expiresIn int, err error) {
	expiresIn = 300 // 5 minutes in seconds
	expiresAt := time.Now().Add(5 * time.Minute).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"subject_id": subjectID,
		"type":       "sse",
		"exp":        expiresAt,
	})
	if err != nil {
		return "", 0, err
	}

	return tokenString, expiresIn, nil
}

// ValidateSSEToken validates an SSE token and returns the subject ID
func (j *JWTService) ValidateSSEToken(tokenString string) (subjectID string, err error) {
	token, err := j.tokenAuth.Decode(tokenString)
	if err != nil {
		return "", err
	}

	tokenType, ok := token.Get("type")
	if !ok || tokenType != "sse" {
		return "", jwt.ErrInvalidJWT()
	}

	subjectIDVal, ok := token.Get("subject_id")
	if !ok {
		return "", jwt.ErrInvalidJWT()
	}

	subjectID, ok = subjectIDVal.(string)
	if !ok {
		return "", jwt.ErrInvalidJWT()
	}

	return subjectID, nil
}
