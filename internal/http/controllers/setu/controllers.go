package setu

import svc "github.com/dropDatabas3/lockerbridge/internal/http/services/setu"

// Controllers agrupa los controllers del tracker API Setu.
type Controllers struct {
	Setu *SetuController
}

func NewControllers(s svc.Service) *Controllers {
	return &Controllers{Setu: NewSetuController(s)}
}
