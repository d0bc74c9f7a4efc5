// Package setu contiene DTOs del tracker de consent requests de API Setu.
package setu

import (
	"encoding/json"
	"time"
)

// CreateRequest: POST /apisetu/digilocker
type CreateRequest struct {
	RedirectURL string `json:"redirectUrl"`
}

// RequestResponse es lo que se devuelve al crear un request.
type RequestResponse struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	Status    string `json:"status"`
	ValidUpto string `json:"validUpto"`
}

// StatusResponse: GET /apisetu/digilocker/{id}/status
// RedirectURL y UserDetails salen del registro local cuando existe.
type StatusResponse struct {
	ID          string       `json:"id"`
	Status      string       `json:"status"`
	ValidUpto   string       `json:"validUpto"`
	TraceID     string       `json:"traceId,omitempty"`
	RedirectURL string       `json:"redirectUrl,omitempty"`
	UserDetails *UserDetails `json:"digilockerUserDetails,omitempty"`
}

// RevokeResponse: GET /apisetu/digilocker/{id}/revoke
type RevokeResponse struct {
	Success bool `json:"success"`
}

// DocumentsResponse: GET /apisetu/digilocker/documents
type DocumentsResponse struct {
	Documents []AvailableDocument `json:"documents"`
}

type AvailableDocument struct {
	AvailableFormats []string        `json:"availableFormats"`
	Description      string          `json:"description"`
	DocType          string          `json:"docType"`
	OrgID            string          `json:"orgId"`
	OrgName          string          `json:"orgName"`
	Parameters       []ParameterSpec `json:"parameters"`
}

type ParameterSpec struct {
	Description string `json:"description"`
	Name        string `json:"name"`
}

// FetchDocumentRequest: POST /apisetu/digilocker/{id}/document
type FetchDocumentRequest struct {
	DocType    string              `json:"docType" validate:"required"`
	OrgID      string              `json:"orgId" validate:"required"`
	Format     string              `json:"format" validate:"required"`
	Consent    string              `json:"consent" validate:"oneof=Y N"`
	Parameters []DocumentParameter `json:"parameters" validate:"dive"`
}

type DocumentParameter struct {
	Name  string `json:"name" validate:"required"`
	Value string `json:"value"`
}

// DocumentResponse apunta al archivo emitido por Setu.
type DocumentResponse struct {
	FileURL   string `json:"fileUrl"`
	ValidUpto string `json:"validUpto"`
}

// AadhaarResponse: GET /apisetu/digilocker/{id}/aadhaar
// Aadhaar se reenvía tal cual llega de Setu.
type AadhaarResponse struct {
	ID      string          `json:"id"`
	Status  string          `json:"status"`
	Aadhaar json.RawMessage `json:"aadhaar,omitempty"`
}

// UserDetails llega en el status una vez autenticado.
type UserDetails struct {
	DigilockerID string `json:"digilockerId,omitempty"`
	Email        string `json:"email,omitempty"`
	PhoneNumber  string `json:"phoneNumber,omitempty"`
}

// StoredRequest es el registro persistido en el namespace setu_request.
type StoredRequest struct {
	ID          string       `json:"id"`
	Status      string       `json:"status"`
	ValidUpto   string       `json:"validUpto"`
	URL         string       `json:"url"`
	RedirectURL string       `json:"redirectUrl"`
	CreatedAt   time.Time    `json:"createdAt"`
	TraceID     string       `json:"traceId"`
	UserDetails *UserDetails `json:"userDetails,omitempty"`
}
