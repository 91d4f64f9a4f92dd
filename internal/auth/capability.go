package auth

import "storefront-api/internal/models"

// Capability es un permiso que una ruta declara y el rol concede
type Capability string

const (
	CapShop            Capability = "shop"
	CapCustomerSelf    Capability = "customer-self"
	CapManageCatalog   Capability = "manage-catalog"
	CapManageOrders    Capability = "manage-orders"
	CapManageCustomers Capability = "manage-customers"
	CapManageSettings  Capability = "manage-settings"
	CapImpersonate     Capability = "impersonate"
)

var roleCapabilities = map[models.Role][]Capability{
	models.RoleCustomer: {CapShop, CapCustomerSelf},
	models.RoleAdmin: {
		CapShop,
		CapManageCatalog,
		CapManageOrders,
		CapManageCustomers,
		CapManageSettings,
		CapImpersonate,
	},
}

// Principal es el usuario autenticado de un request
type Principal struct {
	User            *models.User
	ImpersonatedBy  string
	IsImpersonation bool
}

func (p *Principal) Can(c Capability) bool {
	if p == nil || p.User == nil {
		return false
	}
	return RoleCan(p.User.Role, c)
}

func RoleCan(role models.Role, c Capability) bool {
	for _, granted := range roleCapabilities[role] {
		if granted == c {
			return true
		}
	}
	return false
}
