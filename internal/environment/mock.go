package environment

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/dropDatabas3/lockerbridge/internal/config"
	"github.com/dropDatabas3/lockerbridge/internal/jwt"
	"github.com/dropDatabas3/lockerbridge/internal/provider/digilocker"
)

const (
	MockCodePrefix   = "mock_code_"
	MockUserID       = "mock_user_123"
	MockRefreshToken = "MOCK_REFRESH_TOKEN_XYZ123ABC"
	mockScope        = "read:profile"
)

// Mock emite JWT propios y sirve datos enlatados. Nunca corre en producción.
type Mock struct {
	issuer *jwt.Issuer
}

func NewMock(issuer *jwt.Issuer) *Mock {
	return &Mock{issuer: issuer}
}

func (m *Mock) Name() string           { return config.EnvMock }
func (m *Mock) GuardMode() GuardMode   { return SelfIssued }
func (m *Mock) SecureCookies() bool    { return false }
func (m *Mock) RequiresVerifier() bool { return false }
func (m *Mock) ClientID() string       { return config.MockClientID }
func (m *Mock) Documents() Documents   { return mockDocuments{} }

// AuthorizeURL apunta directo al callback local con un code mock.
func (m *Mock) AuthorizeURL(state, _ string) string {
	q := url.Values{}
	q.Set("code", MockCodePrefix+randomSuffix())
	q.Set("state", state)
	return "/auth/callback?" + q.Encode()
}

func (m *Mock) ExchangeCode(_ context.Context, code, _, _ string) (*digilocker.Token, error) {
	if !strings.HasPrefix(code, MockCodePrefix) {
		return nil, fmt.Errorf("%w: not a mock code", digilocker.ErrRejected)
	}
	return m.issue()
}

func (m *Mock) RefreshToken(_ context.Context, refreshToken string) (*digilocker.Token, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("%w: empty refresh token", digilocker.ErrRejected)
	}
	return m.issue()
}

func (m *Mock) UserInfo(ctx context.Context, accessToken string) (digilocker.Profile, error) {
	return mockDocuments{}.UserInfo(ctx, accessToken)
}

func (m *Mock) issue() (*digilocker.Token, error) {
	at, _, err := m.issuer.IssueAccess(map[string]any{"user_id": MockUserID, "scope": mockScope})
	if err != nil {
		return nil, fmt.Errorf("mock: issue access token: %w", err)
	}
	return &digilocker.Token{
		AccessToken:  at,
		RefreshToken: MockRefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(m.issuer.AccessTTL.Seconds()),
	}, nil
}

func randomSuffix() string {
	b := make([]byte, 6)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

type mockDocuments struct{}

func (mockDocuments) UserInfo(context.Context, string) (digilocker.Profile, error) {
	return digilocker.Profile{
		"sub":          MockUserID,
		"name":         "Mock User",
		"email":        "mock.user@example.com",
		"dob":          "1990-01-01",
		"gender":       "Male",
		"digilockerid": "DLmock12345",
		"eaadhaar":     "Y",
	}, nil
}

func (mockDocuments) IssuedFiles(context.Context, string) (*digilocker.IssuedFiles, error) {
	return &digilocker.IssuedFiles{
		Items: []digilocker.IssuedFile{
			{Name: "Mock Driving License", Type: "Driving License", Size: "12345", Date: "01-01-2023", Mime: "application/pdf", URI: "dl:/mock/driving_license.pdf"},
			{Name: "Mock PAN Card", Type: "PAN Card", Size: "67890", Date: "02-02-2022", Mime: "application/pdf", URI: "dl:/mock/pan_card.pdf"},
			{Name: "Mock Aadhaar Card", Type: "Aadhaar Card", Size: "123456", Date: "03-03-2021", Mime: "application/xml", URI: "dl:/mock/aadhaar.xml"},
		},
		Name:   "Mock User",
		DOB:    "1990-01-01",
		Gender: "M",
	}, nil
}

func (mockDocuments) FileContent(_ context.Context, _, uri string) (*digilocker.File, error) {
	ct := digilocker.ContentTypeFor(uri)
	var body string
	if ct == "application/xml" {
		body = fmt.Sprintf(`<mockDocument uri=%q><content>mock document</content></mockDocument>`, uri)
	} else {
		body = "%PDF-1.4\n% mock document\n%%EOF\n"
	}
	return &digilocker.File{
		Body:          io.NopCloser(bytes.NewReader([]byte(body))),
		ContentType:   ct,
		ContentLength: int64(len(body)),
	}, nil
}
