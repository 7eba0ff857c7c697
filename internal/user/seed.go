package user

import (
	userDatamodel "github.com/frahmantamala/hr-portal/internal/core/datamodel/user"
)

// DefaultRoles is the role permission table every fresh store starts with.
func DefaultRoles() []userDatamodel.Role {
	return []userDatamodel.Role{
		{Name: RoleAdmin, Permissions: []string{"*"}},
		{Name: RoleManager, Permissions: []string{"dashboard", "team", "reports", "scheduling"}},
		{Name: RoleHR, Permissions: []string{"employees", "leave", "performance", "reports", "attendance"}},
		{Name: RoleEmployee, Permissions: []string{"profile", "timesheet", "leave", "schedule"}},
	}
}

func DefaultDepartments() []userDatamodel.Department {
	return []userDatamodel.Department{
		{ID: "engineering", Name: "Engineering"},
		{ID: "hr", Name: "Human Resources"},
		{ID: "sales", Name: "Sales"},
		{ID: "marketing", Name: "Marketing"},
		{ID: "finance", Name: "Finance"},
		{ID: "operations", Name: "Operations"},
	}
}

// DemoUser is a seed account; Password is hashed by the seeder.
type DemoUser struct {
	Draft
	Password string
}

// DemoUsers returns one active account per role.
func DemoUsers() []DemoUser {
	return []DemoUser{
		{Password: "Admin123", Draft: Draft{Email: "admin@hrportal.local", FirstName: "Alice", LastName: "Admin", Role: RoleAdmin, Department: "Human Resources", IsActive: true}},
		{Password: "Manager123", Draft: Draft{Email: "manager@hrportal.local", FirstName: "Marc", LastName: "Manager", Role: RoleManager, Department: "Engineering", IsActive: true}},
		{Password: "Hr123456", Draft: Draft{Email: "hr@hrportal.local", FirstName: "Helen", LastName: "Recruiter", Role: RoleHR, Department: "Human Resources", IsActive: true}},
		{Password: "Employee123", Draft: Draft{Email: "employee@hrportal.local", FirstName: "Eric", LastName: "Employee", Role: RoleEmployee, Department: "Engineering", IsActive: true}},
	}
}
