package domain

import "github.com/bwmarrin/snowflake"

type Permission string

const (
	PermCustomersRegister Permission = "customers.register"
	PermReadingsRecord    Permission = "readings.record"
	PermReadingsEdit      Permission = "readings.edit"
	PermPaymentsView      Permission = "payments.view"
	PermPaymentsRecord    Permission = "payments.record"
	PermReceiptsPrint     Permission = "receipts.print"
	PermReportsView       Permission = "reports.view"
	PermSectorsView       Permission = "sectors.view"
	PermSectorsManage     Permission = "sectors.manage"
	PermUsersManage       Permission = "users.manage"
	PermPermissionsManage Permission = "permissions.manage"
	PermAuditExport       Permission = "audit.export"
)

// PermissionRecord is a row of the permission catalog.
type PermissionRecord struct {
	ID          snowflake.ID `gorm:"primaryKey;autoIncrement:false" json:"id,string"`
	Code        string       `gorm:"type:varchar(64);uniqueIndex;not null" json:"code"`
	Name        string       `gorm:"type:varchar(100);not null" json:"name"`
	Description string       `gorm:"type:varchar(255);not null;default:''" json:"description"`
	Module      string       `gorm:"type:varchar(64);not null" json:"module"`
	Active      bool         `gorm:"not null;default:true" json:"active"`
}

func (PermissionRecord) TableName() string { return "permissions" }

// CatalogEntry describes a permission shipped with the application.
type CatalogEntry struct {
	Code        Permission
	Name        string
	Description string
	Module      string
}

// Catalog is the permission set seeded by migrations.
func Catalog() []CatalogEntry {
	return []CatalogEntry{
		{PermCustomersRegister, "Registrar clientes", "Alta de nuevos clientes", "clientes"},
		{PermReadingsRecord, "Registrar lecturas", "Ingreso de lecturas de contador", "lecturas"},
		{PermReadingsEdit, "Editar lecturas", "Corrección de lecturas pendientes", "lecturas"},
		{PermPaymentsView, "Ver pendientes", "Consulta de facturas pendientes", "pagos"},
		{PermPaymentsRecord, "Registrar pagos", "Cobro de facturas pendientes", "pagos"},
		{PermReceiptsPrint, "Imprimir recibos", "Generación de recibos en PDF", "pagos"},
		{PermReportsView, "Ver reportes", "Reportes de ingresos, morosos y consumo", "reportes"},
		{PermSectorsView, "Ver sectores", "Consulta de sectores y sus clientes", "sectores"},
		{PermSectorsManage, "Administrar sectores", "Alta de sectores", "sectores"},
		{PermUsersManage, "Administrar usuarios", "Alta, baja y contraseñas de usuarios", "administracion"},
		{PermPermissionsManage, "Administrar permisos", "Asignación de permisos por usuario", "administracion"},
		{PermAuditExport, "Exportar auditoría", "Descarga del registro de auditoría", "administracion"},
	}
}

// DefaultRoleGrants are the permissions each non-admin role starts with.
// ADMIN is not listed: it holds every active permission.
func DefaultRoleGrants() map[Role][]Permission {
	return map[Role][]Permission{
		RoleReader: {
			PermReadingsRecord,
			PermPaymentsRecord,
			PermReceiptsPrint,
			PermSectorsView,
		},
		RoleTreasurer: {
			PermReadingsRecord,
			PermPaymentsView,
			PermPaymentsRecord,
			PermReceiptsPrint,
			PermReportsView,
			PermSectorsView,
		},
		RolePresident: {
			PermReportsView,
			PermSectorsView,
		},
	}
}
