package authz

const (
	CompaniesView   = "companies:view"
	CompaniesManage = "companies:manage"

	CatalogsView   = "catalogs:view"
	CatalogsManage = "catalogs:manage"

	EquipmentView   = "equipment:view"
	EquipmentManage = "equipment:manage"
	EquipmentExport = "equipment:export"

	RecordsView   = "records:view"
	RecordsCreate = "records:create"
	RecordsUpdate = "records:update"

	CertificatesView = "certificates:view"
	DashboardView    = "dashboard:view"
)

// rolePermissions is the full grant table. Admins are not listed: they hold
// every permission.
var rolePermissions = map[Role]map[string]bool{
	RoleCustomer: {
		CompaniesView:    true,
		EquipmentView:    true,
		EquipmentExport:  true,
		RecordsView:      true,
		CertificatesView: true,
		DashboardView:    true,
	},
}
