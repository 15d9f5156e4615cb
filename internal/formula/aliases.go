package formula

// builtinAliases lists common species names found in reactor feeds and
// product streams. Keys are matched case-insensitively.
var builtinAliases = map[string]string{
	"hydrogen":          "H2",
	"deuterium":         "D2",
	"oxygen":            "O2",
	"ozone":             "O3",
	"nitrogen":          "N2",
	"argon":             "Ar",
	"helium":            "He",
	"neon":              "Ne",
	"krypton":           "Kr",
	"xenon":             "Xe",
	"water":             "H2O",
	"carbon monoxide":   "CO",
	"carbon dioxide":    "CO2",
	"nitric oxide":      "NO",
	"nitrous oxide":     "N2O",
	"nitrogen dioxide":  "NO2",
	"ammonia":           "NH3",
	"hydrogen sulfide":  "H2S",
	"sulfur dioxide":    "SO2",
	"hydrogen chloride": "HCl",

	"methane":   "CH4",
	"ethane":    "C2H6",
	"propane":   "C3H8",
	"butane":    "C4H10",
	"n-butane":  "C4H10",
	"isobutane": "C4H10",
	"pentane":   "C5H12",
	"hexane":    "C6H14",
	"ethylene":  "C2H4",
	"ethene":    "C2H4",
	"propylene": "C3H6",
	"propene":   "C3H6",
	"butene":    "C4H8",
	"1-butene":  "C4H8",
	"butadiene": "C4H6",
	"acetylene": "C2H2",
	"ethyne":    "C2H2",
	"benzene":   "C6H6",
	"toluene":   "C7H8",

	"methanol":        "CH4O",
	"ethanol":         "C2H6O",
	"propanol":        "C3H8O",
	"dimethyl ether":  "C2H6O",
	"formaldehyde":    "CH2O",
	"acetaldehyde":    "C2H4O",
	"acetone":         "C3H6O",
	"formic acid":     "CH2O2",
	"acetic acid":     "C2H4O2",
	"ethylene oxide":  "C2H4O",
	"propylene oxide": "C3H6O",
	"acrolein":        "C3H4O",
	"acrylic acid":    "C3H4O2",
}
