package auth

import (
	"errors"

	"placement_backend/internal/models"
	"placement_backend/pkg/apperrors"
)

// Policy описывает, кто может выполнить операцию.
// Каждая операция объявляет свою политику явно.
type Policy struct {
	// Roles - допустимые роли. Пустой список - любой аутентифицированный.
	// Сравнение точное, admin не включается неявно.
	Roles []models.Role
	// AdminOverride разрешает admin обходить проверку владельца
	AdminOverride bool

	ownerID    string
	checkOwner bool
}

// RequireRoles - политика только по ролям
func RequireRoles(roles ...models.Role) Policy {
	return Policy{Roles: roles}
}

// OwnedBy добавляет проверку владельца ресурса.
// Пустой ownerID никому не принадлежит.
func (p Policy) OwnedBy(ownerID string) Policy {
	p.ownerID = ownerID
	p.checkOwner = true
	return p
}

// WithAdminOverride разрешает admin действовать над чужими ресурсами
func (p Policy) WithAdminOverride() Policy {
	p.AdminOverride = true
	return p
}

// Principal - проверенный вызывающий
type Principal struct {
	AccountID string
	Role      models.Role
}

func (p *Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}

func (p *Principal) HasRole(roles ...models.Role) bool {
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}

// Check применяет политику к уже проверенному вызывающему
func (p *Principal) Check(policy Policy) error {
	if len(policy.Roles) > 0 && !p.HasRole(policy.Roles...) {
		return apperrors.NewForbiddenError("role is not allowed to perform this operation")
	}
	if policy.checkOwner {
		if policy.AdminOverride && p.IsAdmin() {
			return nil
		}
		if policy.ownerID == "" || policy.ownerID != p.AccountID {
			return apperrors.NewForbiddenError("resource belongs to another account")
		}
	}
	return nil
}

// Guard проверяет токен и политику до любого изменения состояния
type Guard struct {
	tokens *TokenService
}

func NewGuard(tokens *TokenService) *Guard {
	return &Guard{tokens: tokens}
}

// Authenticate только проверяет токен
func (g *Guard) Authenticate(token string) (*Principal, error) {
	identity, err := g.tokens.Verify(token)
	if err != nil {
		msg := "invalid token"
		switch {
		case errors.Is(err, ErrTokenMissing):
			msg = "authentication required"
		case errors.Is(err, ErrTokenExpired):
			msg = "token has expired"
		}
		return nil, apperrors.NewUnauthenticatedError(msg).WithError(err)
	}
	return &Principal{AccountID: identity.AccountID, Role: identity.Role}, nil
}

// Authorize: Unauthenticated, если токен не прошел проверку;
// Forbidden, если не совпала роль или владелец.
func (g *Guard) Authorize(token string, policy Policy) (*Principal, error) {
	principal, err := g.Authenticate(token)
	if err != nil {
		return nil, err
	}
	if err := principal.Check(policy); err != nil {
		return nil, err
	}
	return principal, nil
}
