package model

type Group struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`
}

type Subcategory struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Icon   string  `json:"icon,omitempty"`
	Groups []Group `json:"groups,omitempty"`
}

type Category struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Icon          string        `json:"icon,omitempty"`
	Subcategories []Subcategory `json:"subcategories,omitempty"`
}
