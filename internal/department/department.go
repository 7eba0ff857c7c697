package department

import (
	userDatamodel "github.com/frahmantamala/hr-portal/internal/core/datamodel/user"
)

type Department struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func FromDataModel(d *userDatamodel.Department) *Department {
	return &Department{
		ID:   d.ID,
		Name: d.Name,
	}
}
