package taxes

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jhoicas/Impuestos-api/internal/application/dto"
	"github.com/jhoicas/Impuestos-api/internal/domain"
	"github.com/jhoicas/Impuestos-api/internal/domain/entity"
	"github.com/jhoicas/Impuestos-api/internal/domain/repository"
	"github.com/jhoicas/Impuestos-api/pkg/afip"
	"github.com/jhoicas/Impuestos-api/pkg/logger"
)

// MappingUseCase consulta y configura la cuenta asignada a cada rol contable.
type MappingUseCase struct {
	accountRepo repository.AccountRepository
	mappingRepo repository.AccountMappingRepository
	clock       Clock
	log         *logger.Logger
}

// NewMappingUseCase construye el caso de uso.
func NewMappingUseCase(
	accountRepo repository.AccountRepository,
	mappingRepo repository.AccountMappingRepository,
	clock Clock,
	log *logger.Logger,
) *MappingUseCase {
	if clock == nil {
		clock = SystemClock{}
	}
	return &MappingUseCase{accountRepo: accountRepo, mappingRepo: mappingRepo, clock: clock, log: orNop(log)}
}

// ListAccountRoles devuelve todos los roles con la cuenta que resolvería hoy cada uno.
func (uc *MappingUseCase) ListAccountRoles(ctx context.Context) ([]dto.AccountRoleResponse, error) {
	r, err := loadResolver(ctx, uc.accountRepo, uc.mappingRepo)
	if err != nil {
		return nil, err
	}
	configured, err := uc.mappingRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("asignaciones de cuentas: %w", err)
	}
	byRole := make(map[string]string, len(configured))
	for _, m := range configured {
		byRole[m.Role] = m.AccountID
	}

	out := make([]dto.AccountRoleResponse, 0, len(afip.AccountRoles))
	for key, role := range afip.AccountRoles {
		item := dto.AccountRoleResponse{
			Role:          key,
			Label:         role.Label,
			CanonicalCode: role.Code,
			MappedID:      byRole[key],
		}
		if id := r.Resolve(key, ""); id != "" {
			acc, _ := r.Account(id)
			item.AccountID = acc.ID
			item.AccountCode = acc.Code
			item.AccountName = acc.Name
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CanonicalCode < out[j].CanonicalCode })
	return out, nil
}

// SetAccountMapping asigna una cuenta imputable a un rol.
//
// Retorna:
//   - domain.ErrInvalidInput    si el rol no está catalogado.
//   - domain.ErrInvalidAccount  si la cuenta no existe o es un título.
func (uc *MappingUseCase) SetAccountMapping(ctx context.Context, role string, in dto.SetAccountMappingRequest) (*dto.AccountRoleResponse, error) {
	role = strings.TrimSpace(role)
	def, ok := afip.AccountRoles[role]
	if !ok {
		return nil, fmt.Errorf("%w: rol %q", domain.ErrInvalidInput, role)
	}
	accounts, err := uc.accountRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("plan de cuentas: %w", err)
	}
	var acc *entity.Account
	for i := range accounts {
		if accounts[i].ID == in.AccountID {
			acc = &accounts[i]
			break
		}
	}
	if acc == nil || !acc.Postable() {
		return nil, domain.ErrInvalidAccount
	}
	if err := uc.mappingRepo.Set(ctx, entity.AccountMapping{
		Role:      role,
		AccountID: acc.ID,
		UpdatedAt: uc.clock.Now(),
	}); err != nil {
		return nil, fmt.Errorf("guardar asignación: %w", err)
	}
	uc.log.Info().Str("role", role).Str("account_id", acc.ID).Msg("asignación de cuenta actualizada")
	return &dto.AccountRoleResponse{
		Role:          role,
		Label:         def.Label,
		CanonicalCode: def.Code,
		MappedID:      acc.ID,
		AccountID:     acc.ID,
		AccountCode:   acc.Code,
		AccountName:   acc.Name,
	}, nil
}
