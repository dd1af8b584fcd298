package config

// RedactKey masks an API key for log and console output. Long keys keep the
// first and last four characters, short keys are hidden entirely.
func RedactKey(key string) string {
	if len(key) > 8 {
		return key[:4] + "***" + key[len(key)-4:]
	}
	if key == "" {
		return ""
	}
	return "***"
}
