package token

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

func TestGenerateAndValidateToken(t *testing.T) {
	signed, err := GenerateToken(42, "alice", secret, time.Hour)
	require.NoError(t, err)

	claims, err := ValidateToken(signed, secret)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "42", claims.Subject)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	signed, err := GenerateToken(42, "alice", secret, time.Hour)
	require.NoError(t, err)

	_, err = ValidateToken(signed, []byte("other-secret"))
	assert.Error(t, err)
}

func TestValidateTokenExpired(t *testing.T) {
	signed, err := GenerateToken(42, "alice", secret, -time.Minute)
	require.NoError(t, err)

	_, err = ValidateToken(signed, secret)
	assert.Error(t, err)
}

func TestValidateTokenWithoutUser(t *testing.T) {
	signed, err := GenerateToken(0, "", secret, time.Hour)
	require.NoError(t, err)

	_, err = ValidateToken(signed, secret)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExtractToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	testCases := []struct {
		name    string
		target  string
		header  string
		want    string
		wantErr error
	}{
		{name: "bearer header", target: "/", header: "Bearer abc", want: "abc"},
		{name: "query parameter", target: "/?token=xyz", want: "xyz"},
		{name: "missing", target: "/", wantErr: ErrAuthHeaderMissing},
		{name: "wrong scheme", target: "/", header: "Basic abc", wantErr: ErrInvalidAuthFormat},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request, _ = http.NewRequest(http.MethodGet, tc.target, nil)
			if tc.header != "" {
				c.Request.Header.Set("Authorization", tc.header)
			}

			got, err := ExtractToken(c)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestBearerToken(t *testing.T) {
	got, err := BearerToken("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", got)

	_, err = BearerToken("")
	assert.ErrorIs(t, err, ErrAuthHeaderMissing)

	for _, header := range []string{"Bearer", "Bearer ", "bearer abc", "Bearer a b", "Token abc"} {
		_, err = BearerToken(header)
		assert.ErrorIs(t, err, ErrInvalidAuthFormat, header)
	}
}
