package auth

import (
	"github.com/labstack/echo/v4"

	"github.com/carehub/carehub/internal/platform/apperror"
)

// Operation is an access-controlled action on a resource type.
type Operation string

const (
	OpCreate Operation = "create"
	OpRead   Operation = "read"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// Resource names a governed resource type in the policy table.
type Resource string

const (
	ResourceClient          Resource = "Client"
	ResourceStaff           Resource = "Staff"
	ResourceStaffDocument   Resource = "StaffDocument"
	ResourcePerformance     Resource = "Performance"
	ResourceShift           Resource = "Shift"
	ResourceCarePlan        Resource = "CarePlan"
	ResourceGoal            Resource = "Goal"
	ResourceMedication      Resource = "Medication"
	ResourceAdministration  Resource = "MedicationAdministration"
	ResourceIncident        Resource = "Incident"
	ResourceTraining        Resource = "Training"
	ResourceCompliance      Resource = "Compliance"
	ResourceRiskAssessment  Resource = "RiskAssessment"
	ResourcePBSPlan         Resource = "PBSPlan"
	ResourceDailyLog        Resource = "DailyLog"
	ResourceHandover        Resource = "Handover"
	ResourceSocialActivity  Resource = "SocialActivity"
	ResourceTemplate        Resource = "Template"
	ResourceConsentRecord   Resource = "ConsentRecord"
	ResourceUser            Resource = "User"
	ResourceAuditLog        Resource = "AuditLog"
)

// policyTable is the single source of truth for role access. Every permitted
// role is listed explicitly, Admin included; absence means deny. Delete is
// Admin-only for every governed resource.
var policyTable = map[Resource]map[Operation][]Role{
	ResourceClient: {
		OpCreate: {RoleAdmin, RoleStaff},
		OpRead:   {RoleAdmin, RoleStaff, RoleClient, RoleFamily, RoleExternal},
		OpUpdate: {RoleAdmin, RoleStaff},
		OpDelete: {RoleAdmin},
	},
	ResourceStaff: {
		OpCreate: {RoleAdmin},
		OpRead:   {RoleAdmin, RoleStaff, RoleExternal},
		OpUpdate: {RoleAdmin},
		OpDelete: {RoleAdmin},
	},
	ResourceStaffDocument: {
		OpCreate: {RoleAdmin, RoleStaff},
		OpRead:   {RoleAdmin, RoleStaff},
		OpUpdate: {RoleAdmin},
		OpDelete: {RoleAdmin},
	},
	ResourcePerformance: {
		OpCreate: {RoleAdmin, RoleStaff},
		OpRead:   {RoleAdmin, RoleStaff, RoleExternal},
		OpUpdate: {RoleAdmin, RoleStaff},
		OpDelete: {RoleAdmin},
	},
	ResourceShift: {
		// The rota is planned by admins; staff read their own entries.
		OpCreate: {RoleAdmin},
		OpRead:   {RoleAdmin, RoleStaff},
		OpUpdate: {RoleAdmin},
		OpDelete: {RoleAdmin},
	},
	ResourceCarePlan: {
		OpCreate: {RoleAdmin, RoleStaff},
		OpRead:   {RoleAdmin, RoleStaff, RoleClient, RoleFamily},
		// Client may update only to acknowledge (accept/decline); the
		// service rejects any other Client-authored change.
		OpUpdate: {RoleAdmin, RoleStaff, RoleClient},
		OpDelete: {RoleAdmin},
	},
	ResourceGoal: {
		OpCreate: {RoleAdmin, RoleStaff},
		OpRead:   {RoleAdmin, RoleStaff, RoleClient, RoleFamily, RoleExternal},
		OpUpdate: {RoleAdmin, RoleStaff},
		OpDelete: {RoleAdmin},
	},
	ResourceMedication: {
		OpCreate: {RoleAdmin, RoleStaff},
		OpRead:   {RoleAdmin, RoleStaff, RoleClient, RoleFamily, RoleExternal},
		OpUpdate: {RoleAdmin, RoleStaff},
		OpDelete: {RoleAdmin},
	},
	ResourceAdministration: {
		OpCreate: {RoleAdmin, RoleStaff},
		OpRead:   {RoleAdmin, RoleStaff},
		OpUpdate: {RoleAdmin, RoleStaff},
		OpDelete: {RoleAdmin},
	},
	ResourceIncident: {
		OpCreate: {RoleAdmin, RoleStaff},
		OpRead:   {RoleAdmin, RoleStaff, RoleClient},
		OpUpdate: {RoleAdmin, RoleStaff},
		OpDelete: {RoleAdmin},
	},
	ResourceTraining: {
		OpCreate: {RoleAdmin, RoleStaff},
		OpRead:   {RoleAdmin, RoleStaff},
		OpUpdate: {RoleAdmin},
		OpDelete: {RoleAdmin},
	},
	ResourceCompliance: {
		OpCreate: {RoleAdmin, RoleStaff},
		OpRead:   {RoleAdmin, RoleStaff, RoleClient},
		OpUpdate: {RoleAdmin, RoleStaff},
		OpDelete: {RoleAdmin},
	},
	ResourceRiskAssessment: {
		OpCreate: {RoleAdmin, RoleStaff},
		OpRead:   {RoleAdmin, RoleStaff, RoleClient, RoleFamily, RoleExternal},
		OpUpdate: {RoleAdmin, RoleStaff},
		OpDelete: {RoleAdmin},
	},
	ResourcePBSPlan: {
		OpCreate: {RoleAdmin, RoleStaff},
		OpRead:   {RoleAdmin, RoleStaff, RoleClient, RoleFamily, RoleExternal},
		OpUpdate: {RoleAdmin, RoleStaff},
		OpDelete: {RoleAdmin},
	},
	ResourceDailyLog: {
		OpCreate: {RoleAdmin, RoleStaff},
		OpRead:   {RoleAdmin, RoleStaff, RoleClient, RoleFamily, RoleExternal},
		OpUpdate: {RoleAdmin, RoleStaff},
		OpDelete: {RoleAdmin},
	},
	ResourceHandover: {
		OpCreate: {RoleAdmin, RoleStaff},
		OpRead:   {RoleAdmin, RoleStaff, RoleClient, RoleFamily, RoleExternal},
		OpUpdate: {RoleAdmin, RoleStaff},
		OpDelete: {RoleAdmin},
	},
	ResourceSocialActivity: {
		OpCreate: {RoleAdmin, RoleStaff},
		OpRead:   {RoleAdmin, RoleStaff, RoleClient, RoleFamily},
		OpUpdate: {RoleAdmin, RoleStaff},
		OpDelete: {RoleAdmin},
	},
	ResourceTemplate: {
		OpCreate: {RoleAdmin, RoleStaff},
		OpRead:   {RoleAdmin, RoleStaff, RoleClient, RoleFamily, RoleExternal},
		OpUpdate: {RoleAdmin, RoleStaff},
		OpDelete: {RoleAdmin},
	},
	ResourceConsentRecord: {
		OpCreate: {RoleAdmin, RoleStaff},
		OpRead:   {RoleAdmin, RoleStaff, RoleClient, RoleFamily, RoleExternal},
		OpUpdate: {RoleAdmin, RoleStaff},
		OpDelete: {RoleAdmin},
	},
	ResourceUser: {
		// First-admin bootstrap bypasses the table; see the user service.
		OpCreate: {RoleAdmin},
		OpRead:   {RoleAdmin},
		OpUpdate: {RoleAdmin},
		OpDelete: {RoleAdmin},
	},
	ResourceAuditLog: {
		OpRead:   {RoleAdmin, RoleStaff, RoleExternal},
		OpDelete: {RoleAdmin},
	},
}

// Authorize reports whether role may perform op on resource. Unknown
// resources and operations deny.
func Authorize(role Role, op Operation, resource Resource) bool {
	ops, ok := policyTable[resource]
	if !ok {
		return false
	}
	for _, allowed := range ops[op] {
		if allowed == role {
			return true
		}
	}
	return false
}

// Require returns middleware enforcing the policy table for one operation on
// one resource type. Unauthenticated requests are rejected before policy
// evaluation; an insufficient role yields a bare Forbidden that does not
// reveal whether the target exists.
func Require(op Operation, resource Resource) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := IdentityFromContext(c.Request().Context())
			if id == nil {
				return apperror.New(apperror.KindAuthentication, "authentication required")
			}
			if !Authorize(id.Role, op, resource) {
				return apperror.New(apperror.KindAuthorization, "forbidden: insufficient rights")
			}
			return next(c)
		}
	}
}
