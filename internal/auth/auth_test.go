package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/assignment-service/internal/domain"
	"github.com/spec-kit/assignment-service/internal/repository"
	apperrors "github.com/spec-kit/assignment-service/pkg/util/errorutil"
)

type employeeStub struct {
	items map[string]domain.Employee
}

func (s employeeStub) GetByID(ctx context.Context, id string) (*domain.Employee, error) {
	e, ok := s.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

func (s employeeStub) List(ctx context.Context, filter repository.EmployeeFilter) ([]domain.Employee, error) {
	return nil, nil
}

func newTestApp(tokens *TokenManager, guards ...fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).JSON(fiber.Map{"code": de.Code})
		},
	})
	employees := employeeStub{items: map[string]domain.Employee{
		"emp-admin":  {ID: "emp-admin", Role: domain.EmployeeRoleAdmin, IsActive: true},
		"emp-intern": {ID: "emp-intern", Role: domain.EmployeeRoleIntern, IsActive: true},
		"emp-gone":   {ID: "emp-gone", Role: domain.EmployeeRoleAdmin, IsActive: false},
	}}
	handlers := append([]fiber.Handler{NewAuthMiddleware(tokens, employees).Handle}, guards...)
	handlers = append(handlers, func(c *fiber.Ctx) error {
		actor, ok := ActorFromContext(c)
		if !ok {
			return c.SendStatus(http.StatusTeapot)
		}
		return c.JSON(fiber.Map{"employee_id": actor.EmployeeID, "role": actor.Role})
	})
	app.Get("/whoami", handlers...)
	return app
}

func call(t *testing.T, app *fiber.App, header string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestTokenRoundTrip(t *testing.T) {
	tokens := NewTokenManager("secret", 5, "assignment-service")
	signed, expiresAt, err := tokens.GenerateToken("emp-intern", domain.EmployeeRoleIntern)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), expiresAt, 5*time.Second)

	claims, err := tokens.ParseToken(signed)
	require.NoError(t, err)
	assert.Equal(t, "emp-intern", claims.EmployeeID())
	assert.Equal(t, domain.EmployeeRoleIntern, claims.Role)
}

func TestParseTokenRejectsForeignTokens(t *testing.T) {
	tokens := NewTokenManager("secret", 5, "assignment-service")

	other, _, err := NewTokenManager("other-secret", 5, "assignment-service").GenerateToken("emp-1", domain.EmployeeRoleAdmin)
	require.NoError(t, err)
	_, err = tokens.ParseToken(other)
	assert.Error(t, err)

	wrongIssuer, _, err := NewTokenManager("secret", 5, "someone-else").GenerateToken("emp-1", domain.EmployeeRoleAdmin)
	require.NoError(t, err)
	_, err = tokens.ParseToken(wrongIssuer)
	assert.Error(t, err)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "emp-1",
		Issuer:    "assignment-service",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}})
	expiredStr, err := expired.SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = tokens.ParseToken(expiredStr)
	assert.Error(t, err)
}

func TestGenerateTokenRequiresEmployee(t *testing.T) {
	_, _, err := NewTokenManager("secret", 0, "").GenerateToken("", domain.EmployeeRoleAdmin)
	assert.Error(t, err)
}

func TestMiddlewareResolvesActor(t *testing.T) {
	tokens := NewTokenManager("secret", 5, "assignment-service")
	app := newTestApp(tokens)

	// The stored role wins over the role in the token.
	signed, _, err := tokens.GenerateToken("emp-intern", domain.EmployeeRoleAdmin)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		EmployeeID string `json:"employee_id"`
		Role       string `json:"role"`
	}
	require.NoError(t, decodeJSON(resp, &body))
	assert.Equal(t, "emp-intern", body.EmployeeID)
	assert.Equal(t, "INTERN", body.Role)
}

func TestMiddlewareRejections(t *testing.T) {
	tokens := NewTokenManager("secret", 5, "assignment-service")
	app := newTestApp(tokens)

	unknown, _, err := tokens.GenerateToken("emp-missing", domain.EmployeeRoleAdmin)
	require.NoError(t, err)
	inactive, _, err := tokens.GenerateToken("emp-gone", domain.EmployeeRoleAdmin)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, call(t, app, ""))
	assert.Equal(t, http.StatusUnauthorized, call(t, app, "Basic abc"))
	assert.Equal(t, http.StatusUnauthorized, call(t, app, "Bearer not-a-token"))
	assert.Equal(t, http.StatusUnauthorized, call(t, app, "Bearer "+unknown))
	assert.Equal(t, http.StatusUnauthorized, call(t, app, "Bearer "+inactive))
}

func TestRequireRole(t *testing.T) {
	tokens := NewTokenManager("secret", 5, "assignment-service")
	app := newTestApp(tokens, RequireRole(domain.EmployeeRoleAdmin))

	admin, _, err := tokens.GenerateToken("emp-admin", domain.EmployeeRoleAdmin)
	require.NoError(t, err)
	intern, _, err := tokens.GenerateToken("emp-intern", domain.EmployeeRoleIntern)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, call(t, app, "Bearer "+admin))
	assert.Equal(t, http.StatusForbidden, call(t, app, "Bearer "+intern))
}

func decodeJSON(resp *http.Response, out any) error {
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(out)
}
