package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sailclub/internal/core/domain"
	"sailclub/internal/core/ports"
	"sailclub/pkg/apierrors"
)

// MemberIDHeader carries the member id resolved by the identity proxy in front of the API.
const MemberIDHeader = "X-Member-Id"

const memberKey = "member"

func AuthMiddleware(members ports.MemberRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := GetLang(c)

		member, err := resolveMember(c.Request.Context(), members, c.GetHeader(MemberIDHeader))
		if err != nil {
			if errors.Is(err, domain.ErrUnauthenticated) {
				c.AbortWithStatusJSON(
					http.StatusUnauthorized,
					apierrors.CreateError(http.StatusUnauthorized, apierrors.MsgUnauthenticated, lang),
				)
				return
			}

			zap.L().Error("failed to load authenticated member", zap.Error(err))
			c.AbortWithStatusJSON(
				http.StatusInternalServerError,
				apierrors.CreateError(http.StatusInternalServerError, apierrors.MsgFailAuthenticate, lang),
			)
			return
		}

		c.Set(memberKey, member)
		c.Next()
	}
}

// resolveMember loads the member named by header. A missing, malformed or
// unknown id is ErrUnauthenticated; repository failures are wrapped.
func resolveMember(ctx context.Context, members ports.MemberRepository, header string) (domain.Member, error) {
	memberID, err := strconv.ParseUint(strings.TrimSpace(header), 10, 64)
	if err != nil || memberID == 0 {
		return domain.Member{}, domain.ErrUnauthenticated
	}

	member, err := members.GetMember(ctx, memberID)
	if errors.Is(err, domain.ErrMemberNotFound) {
		return domain.Member{}, fmt.Errorf("member %d: %w", memberID, domain.ErrUnauthenticated)
	}
	if err != nil {
		return domain.Member{}, fmt.Errorf("load member %d: %w", memberID, err)
	}
	return member, nil
}

// CurrentMember returns the member stored by AuthMiddleware.
func CurrentMember(c *gin.Context) (domain.Member, bool) {
	value, exists := c.Get(memberKey)
	if !exists {
		return domain.Member{}, false
	}
	member, ok := value.(domain.Member)
	return member, ok
}
