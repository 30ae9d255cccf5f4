package metrics

const namespace = "afrifood"

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
