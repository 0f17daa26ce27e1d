package authz

import (
	"net/http"
	"strings"

	"workers-service/internal/dto"
)

// Gatekeeper остается пустым, это просто "контейнер" для методов
type Gatekeeper struct{}

func NewGatekeeper() *Gatekeeper {
	return &Gatekeeper{}
}

// Can - просмотр доступен всем, включая анонимных; остальное только сотрудникам с флагом staff.
func (g *Gatekeeper) Can(actor *dto.Principal, permission string) bool {
	if strings.HasSuffix(permission, ":view") {
		return true
	}
	return actor != nil && actor.IsStaff
}

// PermissionForMethod сопоставляет HTTP-метод действию над сотрудниками.
func PermissionForMethod(method string) string {
	switch strings.ToUpper(method) {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return WorkersView
	case http.MethodPost:
		return WorkersCreate
	case http.MethodPut, http.MethodPatch:
		return WorkersUpdate
	case http.MethodDelete:
		return WorkersDelete
	}
	return "workers:" + strings.ToLower(method)
}

// Allow - безопасные методы разрешены всем, небезопасные только staff.
func Allow(method string, p *dto.Principal) bool {
	return NewGatekeeper().Can(p, PermissionForMethod(method))
}
