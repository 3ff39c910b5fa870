// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package opa

// Group names the sub-object of an OPA property a column is read from.
type Group string

const (
	GroupProperty        Group = "property"
	GroupOwner           Group = "owner"
	GroupCharacteristics Group = "characteristics"
	GroupSales           Group = "sales"
	GroupGeometry        Group = "geometry"
)

// groupPaths holds the gjson path of each group relative to data.property.
var groupPaths = map[Group]string{
	GroupProperty:        "",
	GroupOwner:           "ownership.0",
	GroupCharacteristics: "characteristics",
	GroupSales:           "sales_information",
	GroupGeometry:        "geometry",
}

// Column is one flattened output field.
type Column struct {
	Group Group
	Name  string
}

// Key returns the column name qualified by its group, unique across a row
// ("zip" for the property, "owner_zip" for the first owner).
func (c Column) Key() string {
	if c.Group == GroupProperty {
		return c.Name
	}
	return string(c.Group) + "_" + c.Name
}

func columns(g Group, names ...string) []Column {
	cols := make([]Column, len(names))
	for i, n := range names {
		cols[i] = Column{Group: g, Name: n}
	}
	return cols
}

// PropertyColumns is the property row layout, in output order.
var PropertyColumns = concat(
	columns(GroupProperty, "property_id", "account_number", "full_address", "unit", "zip"),
	columns(GroupOwner, "name", "street", "city", "state", "zip"),
	columns(GroupCharacteristics, "description", "beginning_point", "land_area", "improvement_area",
		"improvement_description", "exterior_condition", "zoning", "zoning_description",
		"building_code", "eq_id", "gma", "homestead"),
	columns(GroupSales, "sales_date", "sales_price", "sales_type"),
	columns(GroupGeometry, "x", "y"),
)

// ValuationColumns is the valuation row layout, in output order.
var ValuationColumns = []string{
	"id", "certification_year", "assessment_date", "market_value_date", "market_value",
	"land_taxable", "land_exempt", "improvement_taxable", "improvement_exempt",
	"total_exempt", "exempt_code", "exempt_date", "exempt_description", "taxes", "certified",
}

// AccountColumn is appended to every valuation row to link it to its property.
const AccountColumn = "opa_id"

func concat(groups ...[]Column) []Column {
	var all []Column
	for _, g := range groups {
		all = append(all, g...)
	}
	return all
}

// PropertyHeader returns the unqualified property column names, as used
// for the CSV header.
func PropertyHeader() []string {
	h := make([]string, len(PropertyColumns))
	for i, c := range PropertyColumns {
		h[i] = c.Name
	}
	return h
}

// ValuationHeader returns the valuation column names followed by AccountColumn.
func ValuationHeader() []string {
	return append(append([]string(nil), ValuationColumns...), AccountColumn)
}
