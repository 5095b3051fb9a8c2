package domoticz

import (
	"net/url"
	"strconv"
)

// jsonPath is the single endpoint the Domoticz API lives behind; operations
// are selected with query parameters.
const jsonPath = "/json.htm"

// DeviceURL builds the URL that fetches a single device by index.
func DeviceURL(baseURL string, idx int) string {
	params := url.Values{}
	params.Set("type", "devices")
	params.Set("rid", strconv.Itoa(idx))
	return endpoint(baseURL, params)
}

// DevicesURL builds the URL that fetches the full device list.
func DevicesURL(baseURL string) string {
	params := url.Values{}
	params.Set("type", "devices")
	return endpoint(baseURL, params)
}

// UpdateURL builds the URL that pushes a new string value to a virtual
// sensor.
func UpdateURL(baseURL string, idx int, svalue string) string {
	params := url.Values{}
	params.Set("type", "command")
	params.Set("param", "udevice")
	params.Set("idx", strconv.Itoa(idx))
	params.Set("svalue", svalue)
	return endpoint(baseURL, params)
}

// VersionURL builds the URL that reports the server version, used as a
// health check.
func VersionURL(baseURL string) string {
	params := url.Values{}
	params.Set("type", "command")
	params.Set("param", "getversion")
	return endpoint(baseURL, params)
}

func endpoint(baseURL string, params url.Values) string {
	return baseURL + jsonPath + "?" + params.Encode()
}
