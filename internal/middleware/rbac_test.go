package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/sahana-institute/payroll-api/internal/models"
)

func performRBAC(claims *models.JWTClaims, params gin.Params, allowed ...string) int {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Params = params
	if claims != nil {
		c.Set(ContextUserKey, claims)
	}

	RBAC(allowed...)(c)
	return rec.Code
}

func TestRBACRejectsMissingClaims(t *testing.T) {
	code := performRBAC(nil, nil, "ADMIN")
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestRBACAllowsMatchingRole(t *testing.T) {
	claims := &models.JWTClaims{UserID: "u1", Role: models.RoleAdmin}
	code := performRBAC(claims, nil, "ADMIN", "STAFF")
	assert.Equal(t, http.StatusOK, code)
}

func TestRBACRejectsOtherRole(t *testing.T) {
	claims := &models.JWTClaims{UserID: "u1", Role: models.RoleTeacher}
	code := performRBAC(claims, nil, "ADMIN")
	assert.Equal(t, http.StatusForbidden, code)
}

func TestRBACSelfMatchesUserID(t *testing.T) {
	claims := &models.JWTClaims{UserID: "u1", Role: models.RoleTeacher}
	params := gin.Params{{Key: "id", Value: "u1"}}
	code := performRBAC(claims, params, "ADMIN", "SELF")
	assert.Equal(t, http.StatusOK, code)
}

func TestRBACSelfMatchesLinkedTeacher(t *testing.T) {
	claims := &models.JWTClaims{UserID: "u1", Role: models.RoleTeacher, TeacherID: "t9"}
	params := gin.Params{{Key: "teacherId", Value: "t9"}}
	code := performRBAC(claims, params, "ADMIN", "SELF")
	assert.Equal(t, http.StatusOK, code)
}

func TestRBACSelfRejectsOtherTeacher(t *testing.T) {
	claims := &models.JWTClaims{UserID: "u1", Role: models.RoleTeacher, TeacherID: "t9"}
	params := gin.Params{{Key: "teacherId", Value: "t2"}}
	code := performRBAC(claims, params, "ADMIN", "SELF")
	assert.Equal(t, http.StatusForbidden, code)
}
