// Package middleware содержит HTTP middleware: аутентификацию, проверку ролей и метрики
package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SportsBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SportsBookingService/internal/domain"
)

const (
	// HeaderUserID заголовок с ID пользователя (от API gateway)
	HeaderUserID = "X-User-ID"
	// HeaderUserRole заголовок с ролью пользователя (от API gateway)
	HeaderUserRole = "X-User-Role"

	msgMissingToken     = "требуется авторизация"
	msgInvalidToken     = "недействительный токен"
	msgInvalidUserID    = "некорректный ID пользователя"
	msgInvalidRole      = "некорректная роль пользователя"
	msgInsufficientRole = "недостаточно прав"
)

var (
	errMissingSubject = errors.New("token has no subject")
	errInvalidRole    = errors.New("unknown role")
)

type identityKey struct{}

// WithIdentity кладет пользователя в контекст
func WithIdentity(ctx context.Context, identity domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// GetIdentity возвращает пользователя, установленного middleware аутентификации
func GetIdentity(ctx context.Context) (domain.Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(domain.Identity)
	return identity, ok && identity.UserID > 0
}

// GetUserID возвращает ID аутентифицированного пользователя
func GetUserID(ctx context.Context) (int64, bool) {
	identity, ok := GetIdentity(ctx)
	return identity.UserID, ok
}

// NewAuth возвращает middleware аутентификации.
// С непустым secret проверяется Bearer JWT (HS256). Без секрета заголовки
// X-User-ID и X-User-Role принимаются только при trustGatewayHeaders,
// иначе все запросы отклоняются.
func NewAuth(secret string, trustGatewayHeaders bool) mux.MiddlewareFunc {
	switch {
	case secret != "":
		return JWTAuth(secret)
	case trustGatewayHeaders:
		return Auth
	default:
		return denyAll
	}
}

func denyAll(http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		handlers.RespondError(w, http.StatusUnauthorized, msgMissingToken)
	})
}

// Auth извлекает пользователя из заголовков X-User-ID и X-User-Role.
// Роль по умолчанию student.
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(HeaderUserID)
		if raw == "" {
			handlers.RespondError(w, http.StatusUnauthorized, msgMissingToken)
			return
		}

		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || userID <= 0 {
			handlers.RespondError(w, http.StatusUnauthorized, msgInvalidUserID)
			return
		}

		role, err := parseRole(r.Header.Get(HeaderUserRole))
		if err != nil {
			handlers.RespondError(w, http.StatusUnauthorized, msgInvalidRole)
			return
		}

		ctx := WithIdentity(r.Context(), domain.Identity{UserID: userID, Role: role})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// JWTAuth проверяет токен из заголовка Authorization: Bearer <token>.
// Ожидаются claims sub (ID пользователя) и role.
func JWTAuth(secret string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				handlers.RespondError(w, http.StatusUnauthorized, msgMissingToken)
				return
			}

			identity, err := ParseToken(strings.TrimPrefix(auth, "Bearer "), secret)
			if err != nil {
				handlers.RespondError(w, http.StatusUnauthorized, msgInvalidToken)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// ParseToken проверяет подпись HS256 и срок действия, извлекает пользователя из claims.
// Токен без exp не принимается.
func ParseToken(raw, secret string) (domain.Identity, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return domain.Identity{}, err
	}

	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return domain.Identity{}, errMissingSubject
	}

	userID, err := subject(claims["sub"])
	if err != nil {
		return domain.Identity{}, err
	}

	rawRole, _ := claims["role"].(string)
	role, err := parseRole(rawRole)
	if err != nil {
		return domain.Identity{}, err
	}

	return domain.Identity{UserID: userID, Role: role}, nil
}

// RequireRole пропускает только пользователей с одной из ролей
func RequireRole(roles ...domain.Role) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := GetIdentity(r.Context())
			if !ok {
				handlers.RespondError(w, http.StatusUnauthorized, msgMissingToken)
				return
			}

			for _, role := range roles {
				if identity.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			handlers.RespondError(w, http.StatusForbidden, msgInsufficientRole)
		})
	}
}

// subject sub может быть строкой или числом
func subject(v interface{}) (int64, error) {
	var (
		id  int64
		err error
	)

	switch s := v.(type) {
	case string:
		id, err = strconv.ParseInt(s, 10, 64)
	case float64:
		id = int64(s)
	case json.Number:
		id, err = s.Int64()
	default:
		return 0, errMissingSubject
	}

	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %v", errMissingSubject, v)
	}
	return id, nil
}

func parseRole(raw string) (domain.Role, error) {
	switch role := domain.Role(strings.ToLower(strings.TrimSpace(raw))); role {
	case "":
		return domain.RoleStudent, nil
	case domain.RoleStudent, domain.RoleStaff, domain.RoleAdmin:
		return role, nil
	default:
		return "", fmt.Errorf("%w: %q", errInvalidRole, raw)
	}
}
