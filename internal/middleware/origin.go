package middleware

import "net/url"

// Origin returns the scheme://host origin of rawURL, or "" when rawURL has
// no scheme or host.
func Origin(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

// OriginHosts turns origins into the host patterns the websocket accepter
// matches against. Entries without a scheme, such as "*", pass through.
func OriginHosts(origins []string) []string {
	hosts := make([]string, 0, len(origins))
	for _, o := range origins {
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			hosts = append(hosts, u.Host)
			continue
		}
		hosts = append(hosts, o)
	}
	return hosts
}
