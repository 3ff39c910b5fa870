// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package opatest provides OPA service response fixtures for tests.
package opatest

import "fmt"

// SampleResponse is a successful account response for account 884350465
// with two valuation history entries.
const SampleResponse = `{
  "status": "success",
  "data": {
    "property": {
      "property_id": "488137800",
      "account_number": "884350465",
      "full_address": "1234 MARKET ST",
      "unit": "",
      "zip": "19107",
      "ownership": [
        {"name": "CITY OF PHILADELPHIA", "street": "1401 JFK BLVD", "city": "PHILADELPHIA", "state": "PA", "zip": "19102"},
        {"name": "SECOND OWNER", "street": "", "city": "", "state": "", "zip": ""}
      ],
      "characteristics": {
        "description": "STORE W/OFF",
        "beginning_point": "SWC MARKET ST",
        "land_area": 1800,
        "improvement_area": 5400,
        "improvement_description": "COMMERCIAL",
        "exterior_condition": "AVERAGE",
        "zoning": "CMX5",
        "zoning_description": "COMMERCIAL MIXED USE",
        "building_code": "S60",
        "eq_id": null,
        "gma": "A",
        "homestead": false
      },
      "sales_information": {
        "sales_date": "/Date(1357016400000-0500)/",
        "sales_price": 150000,
        "sales_type": "DEED"
      },
      "geometry": {"x": 2694001.5, "y": 235656.25},
      "valuation_history": [
        {
          "id": 1, "certification_year": 2014,
          "assessment_date": "/Date(1388552400000-0500)/",
          "market_value_date": "/Date(1388552400000-0500)/",
          "market_value": 120500, "land_taxable": 24100, "land_exempt": 0,
          "improvement_taxable": 96400, "improvement_exempt": 0, "total_exempt": 0,
          "exempt_code": null, "exempt_date": null, "exempt_description": "",
          "taxes": 1618.31, "certified": true
        },
        {
          "id": 2, "certification_year": 2013,
          "assessment_date": "/Date(1357016400000-0500)/",
          "market_value_date": "/Date(1357016400000-0500)/",
          "market_value": 98000, "land_taxable": 19600, "land_exempt": 0,
          "improvement_taxable": 78400, "improvement_exempt": 0, "total_exempt": 0,
          "exempt_code": null, "exempt_date": null, "exempt_description": "",
          "taxes": 9064.02, "certified": true
        }
      ]
    }
  }
}`

// NotFoundResponse is the body the service returns for an unknown account.
const NotFoundResponse = `{"status":"error","data":null,"message":"Account not found"}`

// Response returns a minimal successful body for account with one
// valuation entry whose market value is value.
func Response(account int, value int) string {
	return fmt.Sprintf(`{"status":"success","data":{"property":{`+
		`"property_id":"p%[1]d","account_number":"%[1]d","full_address":"%[1]d TEST ST","zip":"19100",`+
		`"ownership":[{"name":"OWNER %[1]d"}],`+
		`"valuation_history":[{"id":1,"certification_year":2014,"market_value":%[2]d,"certified":true}]}}}`,
		account, value)
}
