package digilocker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
)

// Profile son los claims de userinfo. El contenido varía según el scope
// concedido, así que se conserva completo.
type Profile map[string]any

// Subject devuelve el claim "sub".
func (p Profile) Subject() string {
	s, _ := p["sub"].(string)
	return s
}

type IssuedFile struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Size        string `json:"size"`
	Date        string `json:"date"`
	Mime        string `json:"mime"`
	URI         string `json:"uri"`
	Description string `json:"description,omitempty"`
	IssuerID    string `json:"issuerid,omitempty"`
	Issuer      string `json:"issuer,omitempty"`
	DocType     string `json:"doctype,omitempty"`
}

type IssuedFiles struct {
	Items  []IssuedFile `json:"items"`
	Name   string       `json:"name,omitempty"`
	DOB    string       `json:"dob,omitempty"`
	Gender string       `json:"gender,omitempty"`
}

// File es un documento en streaming. El caller cierra Body.
type File struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
}

// ContentTypeFor infiere el content type por la extensión del URI.
func ContentTypeFor(uri string) string {
	switch strings.ToLower(path.Ext(uri)) {
	case ".pdf":
		return "application/pdf"
	case ".xml":
		return "application/xml"
	default:
		return "application/octet-stream"
	}
}

// UserInfo consulta el userinfo endpoint.
func (c *Client) UserInfo(ctx context.Context, accessToken string) (Profile, error) {
	var p Profile
	if err := c.getJSON(ctx, c.cfg.UserInfoURL, accessToken, &p); err != nil {
		return nil, err
	}
	return p, nil
}

// IssuedFiles lista los documentos emitidos al usuario.
func (c *Client) IssuedFiles(ctx context.Context, accessToken string) (*IssuedFiles, error) {
	var out IssuedFiles
	if err := c.getJSON(ctx, c.cfg.APIBaseURL+"/files/issued", accessToken, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FileContent descarga un documento. El prefijo "dl:/" del URI se quita
// antes de codificarlo en el path. Solo la espera de headers está acotada;
// la lectura del body depende de ctx.
func (c *Client) FileContent(ctx context.Context, accessToken, uri string) (*File, error) {
	target := c.cfg.APIBaseURL + "/files/file/" + url.PathEscape(strings.TrimPrefix(uri, "dl:/"))
	resp, err := c.do(ctx, target, accessToken, "application/pdf")
	if err != nil {
		return nil, err
	}
	return &File{
		Body:          resp.Body,
		ContentType:   ContentTypeFor(uri),
		ContentLength: resp.ContentLength,
	}, nil
}

func (c *Client) getJSON(ctx context.Context, target, accessToken string, dst any) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	resp, err := c.do(ctx, target, accessToken, "application/json")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		if isTimeout(err) {
			return fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return fmt.Errorf("digilocker: decode %s: %w", target, err)
	}
	return nil
}

// do ejecuta un GET con Bearer. En éxito el caller cierra el body.
func (c *Client) do(ctx context.Context, target, accessToken, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("digilocker: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", accept)

	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return nil, fmt.Errorf("digilocker: GET %s: %w", target, err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	return nil, &UpstreamError{Status: resp.StatusCode, Body: string(body)}
}
