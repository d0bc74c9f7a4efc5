// Package documents contiene DTOs del proxy de documentos.
package documents

import "github.com/dropDatabas3/lockerbridge/internal/provider/digilocker"

type (
	Profile             = digilocker.Profile
	IssuedFilesResponse = digilocker.IssuedFiles
	IssuedFile          = digilocker.IssuedFile
)

// FileStream es un documento listo para copiar a la respuesta.
type FileStream = digilocker.File
