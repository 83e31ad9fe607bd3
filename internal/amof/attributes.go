package amof

import (
	"fmt"
	"strings"
)

// Instrument holds the fixed description of a deployed instrument.
type Instrument struct {
	Name         string
	Platform     string
	PlatformType string
	Manufacturer string
	Model        string
	SerialNumber string
	Latitude     float32
	Longitude    float32
}

// NCASAWS10 is the default deployment of ncas-aws-10.
func NCASAWS10() Instrument {
	return Instrument{
		Name:         "ncas-aws-10",
		Platform:     "iao",
		PlatformType: "stationary_platform",
		Manufacturer: "Vaisala",
		Model:        "WXT536",
		SerialNumber: "N404071 PTU: P5040241",
		Latitude:     52.3141,
		Longitude:    -1.5426423,
	}
}

// Placeholder marks template attributes that must be replaced before publishing.
const Placeholder = "CHANGE"

// GlobalAttr is a string-valued global attribute.
type GlobalAttr struct {
	Name  string
	Value string
}

// GlobalAttributes returns the AMOF 2.0 global attributes, in file order,
// prefilled from the instrument and product. Attributes that depend on the
// data or the deployment are left empty or hold a CHANGE placeholder.
func GlobalAttributes(inst Instrument, p Product, softwareVersion string) []GlobalAttr {
	return []GlobalAttr{
		{"Conventions", "CF-1.6, NCAS-AMF-2.0.0"},
		{"source", "NCAS Automatic Weather Station unit 10"},
		{"instrument_manufacturer", inst.Manufacturer},
		{"instrument_model", inst.Model},
		{"instrument_serial_number", inst.SerialNumber},
		{"instrument_software", ""},
		{"instrument_software_version", ""},
		{"creator_name", ""},
		{"creator_email", ""},
		{"creator_url", ""},
		{"institution", "National Centre for Atmospheric Science (NCAS)"},
		{"processing_software_url", "https://github.com/ncasuk/ncas-aws-10-software"},
		{"processing_software_version", softwareVersion},
		{"calibration_sensitivity", "Not Applicable"},
		{"calibration_certification_date", "Not Applicable"},
		{"calibration_certification_url", "Not Applicable"},
		{"sampling_interval", ""},
		{"averaging_interval", ""},
		{"product_version", "v" + p.Version},
		{"processing_level", "1"},
		{"last_revised_date", ""},
		{"project", ""},
		{"project_principal_investigator", ""},
		{"project_principal_investigator_email", ""},
		{"project_principal_investigator_url", ""},
		{"licence", "Data usage licence - UK Government Open Licence agreement: http://www.nationalarchives.gov.uk/doc/open-government-licence"},
		{"acknowledgement", "Acknowledgement of NCAS as the data provider is required whenever and wherever these data are used"},
		{"platform", inst.Platform},
		{"platform_type", inst.PlatformType},
		{"deployment_mode", "land"},
		{"title", fmt.Sprintf("Surface meteorology from %s", inst.Name)},
		{"featureType", "timeSeries"},
		{"time_coverage_start", ""},
		{"time_coverage_end", ""},
		{"geospatial_bounds", Placeholder + ": e.g. X.XN, Y.YE"},
		{"platform_altitude", ""},
		{"location_keywords", ""},
		{"amf_vocabularies_release", "https://github.com/ncasuk/AMF_CVs/releases/tag/v2.0.0"},
		{"history", ""},
		{"comment", ""},
	}
}

// NeedsChange reports whether an attribute value is still a template placeholder.
func NeedsChange(value string) bool {
	return strings.Contains(value, Placeholder)
}

// GeospatialBounds formats a point deployment as "<lat>N, <lon>E".
func GeospatialBounds(lat, lon float32) string {
	return fmt.Sprintf("%gN, %gE", lat, lon)
}
