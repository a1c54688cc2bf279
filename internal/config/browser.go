package config

// Headers sent to the upstream catalog so requests look like a desktop Chrome.
const (
	ChromeUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/129.0.0.0 Safari/537.36"
	ChromeSecChUa   = `"Google Chrome";v="129", "Not=A?Brand";v="8", "Chromium";v="129"`
)
