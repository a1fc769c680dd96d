package bluetooth

// LookupManufacturer returns a human-readable name for a Bluetooth SIG company ID.
// It covers common non-glasses vendors so unmatched advertisements can still
// be labelled in logs and classify output.
// See: https://www.bluetooth.com/specifications/assigned-numbers/
func LookupManufacturer(companyID uint16) string {
	if name, ok := companyNames[companyID]; ok {
		return name
	}
	return ""
}

var companyNames = map[uint16]string{
	0x004C: "Apple",
	0x0006: "Microsoft",
	0x00E0: "Google",
	0x0075: "Samsung",
	0x038F: "Xiaomi",
	0x027D: "Huawei",
	0x0087: "Garmin",
	0x009E: "Bose",
	0x012D: "Sony",
	0x00C4: "LG",
	0x0171: "Amazon",
	0x067C: "Tile",
	0x0059: "Nordic",
	0x000D: "Texas Inst.",
	0x0002: "Intel",
	0x000F: "Broadcom",
	0x000A: "Qualcomm",
	0x0499: "Ruuvi",
	0x02E5: "Espressif",
	0x01DA: "Logitech",
	0x0157: "Anhui Huami",
	0x01AB: "Meta",
	0x058E: "Meta Technologies",
	0x0D53: "Luxottica",
	0x03C2: "Snap",
	0x060C: "Vuzix",
	0x0040: "Seiko Epson",
	0x02C5: "Lenovo",
	0x02ED: "HTC",
}
