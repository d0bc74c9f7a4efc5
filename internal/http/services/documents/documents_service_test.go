package documents

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/lockerbridge/internal/environment"
	"github.com/dropDatabas3/lockerbridge/internal/jwt"
	"github.com/dropDatabas3/lockerbridge/internal/provider/digilocker"
)

type fakeDocs struct {
	err error
}

func (f fakeDocs) UserInfo(context.Context, string) (digilocker.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	return digilocker.Profile{"sub": "u1"}, nil
}

func (f fakeDocs) IssuedFiles(context.Context, string) (*digilocker.IssuedFiles, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &digilocker.IssuedFiles{Items: []digilocker.IssuedFile{{Name: "a", URI: "dl:/a.pdf"}}}, nil
}

func (f fakeDocs) FileContent(_ context.Context, _, uri string) (*digilocker.File, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &digilocker.File{Body: io.NopCloser(strings.NewReader("x")), ContentType: digilocker.ContentTypeFor(uri)}, nil
}

func TestService_RequiresToken(t *testing.T) {
	ctx := context.Background()
	svc := NewService(Deps{Docs: fakeDocs{}})

	_, err := svc.Profile(ctx, "")
	assert.ErrorIs(t, err, ErrNoAccessToken)
	_, err = svc.IssuedFiles(ctx, "")
	assert.ErrorIs(t, err, ErrNoAccessToken)
	_, err = svc.FileContent(ctx, "", "dl:/a.pdf")
	assert.ErrorIs(t, err, ErrNoAccessToken)
	_, err = svc.FileContent(ctx, "tok", " ")
	assert.ErrorIs(t, err, ErrMissingURI)
}

func TestService_PassesThrough(t *testing.T) {
	ctx := context.Background()
	svc := NewService(Deps{Docs: fakeDocs{}})

	p, err := svc.Profile(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "u1", p.Subject())

	files, err := svc.IssuedFiles(ctx, "tok")
	require.NoError(t, err)
	require.Len(t, files.Items, 1)

	f, err := svc.FileContent(ctx, "tok", "dl:/a.pdf")
	require.NoError(t, err)
	defer f.Body.Close()
	assert.Equal(t, "application/pdf", f.ContentType)
}

func TestService_ErrorKinds(t *testing.T) {
	ctx := context.Background()

	_, err := NewService(Deps{Docs: fakeDocs{err: ErrNotFound}}).IssuedFiles(ctx, "tok")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = NewService(Deps{Docs: fakeDocs{err: &UpstreamError{Status: http.StatusBadGateway, Body: "boom"}}}).Profile(ctx, "tok")
	var up *UpstreamError
	require.True(t, errors.As(err, &up))
	assert.Equal(t, http.StatusBadGateway, up.Status)

	netErr := errors.New("dial tcp: refused")
	_, err = NewService(Deps{Docs: fakeDocs{err: netErr}}).Profile(ctx, "tok")
	assert.ErrorIs(t, err, netErr)
}

func TestService_MockEnvironment(t *testing.T) {
	env := environment.NewMock(jwt.NewIssuer("secret"))
	svc := NewService(Deps{Docs: env.Documents()})

	files, err := svc.IssuedFiles(context.Background(), "tok")
	require.NoError(t, err)
	assert.Len(t, files.Items, 3)
}
