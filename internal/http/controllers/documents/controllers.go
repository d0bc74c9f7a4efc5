package documents

import svc "github.com/dropDatabas3/lockerbridge/internal/http/services/documents"

// Controllers agrupa los controllers del proxy de documentos.
type Controllers struct {
	Documents *DocumentsController
}

func NewControllers(s svc.Service) *Controllers {
	return &Controllers{Documents: NewDocumentsController(s)}
}
