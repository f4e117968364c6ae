package tax

import (
	"sort"
	"strings"

	"github.com/jhoicas/Impuestos-api/internal/domain"
	"github.com/jhoicas/Impuestos-api/internal/domain/entity"
	"github.com/jhoicas/Impuestos-api/pkg/afip"
	"github.com/samber/lo"
)

// AccountResolver resuelve roles semánticos a cuentas imputables del plan de cuentas.
// Orden de precedencia: cuenta explícita del llamador, asignación configurada, código
// canónico del plan modelo y, por último, coincidencia aproximada por nombre.
type AccountResolver struct {
	accounts []entity.Account // ordenadas por código
	byID     map[string]entity.Account
	mappings map[string]string // rol -> id de cuenta
}

// NewAccountResolver construye el resolvedor sobre una foto del plan y las asignaciones.
func NewAccountResolver(accounts []entity.Account, mappings map[string]string) *AccountResolver {
	sorted := append([]entity.Account(nil), accounts...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Code < sorted[j].Code })
	return &AccountResolver{
		accounts: sorted,
		byID:     lo.KeyBy(sorted, func(a entity.Account) string { return a.ID }),
		mappings: mappings,
	}
}

// Account devuelve la cuenta por id.
func (r *AccountResolver) Account(id string) (entity.Account, bool) {
	a, ok := r.byID[id]
	return a, ok
}

// IsPostable indica si el id existe y es una cuenta imputable.
func (r *AccountResolver) IsPostable(id string) bool {
	a, ok := r.byID[id]
	return ok && a.Postable()
}

// Resolve devuelve el id de la cuenta para el rol, o "" si no hay ninguna imputable.
// overrideID, si apunta a una cuenta imputable, gana siempre.
func (r *AccountResolver) Resolve(role, overrideID string) string {
	if overrideID != "" && r.IsPostable(overrideID) {
		return overrideID
	}
	if id := r.mappings[role]; id != "" && r.IsPostable(id) {
		return id
	}
	def, ok := afip.AccountRoles[role]
	if !ok {
		return ""
	}
	if def.Code != "" {
		for _, a := range r.accounts {
			if a.Postable() && a.Code == def.Code {
				return a.ID
			}
		}
	}
	return r.matchByName(def.Names)
}

// MustResolve como Resolve pero devuelve un error de configuración con la etiqueta del rol.
func (r *AccountResolver) MustResolve(role, overrideID string) (string, error) {
	if id := r.Resolve(role, overrideID); id != "" {
		return id, nil
	}
	return "", domain.MissingAccount(afip.RoleLabel(role))
}

// matchByName: primero igualdad de nombre normalizado, después contención; en ambos casos
// respeta el orden de los nombres aceptables y luego el orden por código.
func (r *AccountResolver) matchByName(names []string) string {
	postable := lo.Filter(r.accounts, func(a entity.Account, _ int) bool { return a.Postable() })
	normalized := lo.Map(postable, func(a entity.Account, _ int) string { return afip.Normalize(a.Name) })
	for _, want := range names {
		want = afip.Normalize(want)
		for i, got := range normalized {
			if got == want {
				return postable[i].ID
			}
		}
	}
	for _, want := range names {
		want = afip.Normalize(want)
		if want == "" {
			continue
		}
		for i, got := range normalized {
			if strings.Contains(" "+got+" ", " "+want+" ") {
				return postable[i].ID
			}
		}
	}
	return ""
}
