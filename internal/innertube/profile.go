package innertube

import (
	"fmt"
	"strings"
)

// ClientProfile identifies the client the remote endpoint should believe it
// is talking to.
type ClientProfile struct {
	Name              string
	Version           string
	UserAgent         string
	AndroidSDKVersion int
	// ContextNameID is sent as X-Youtube-Client-Name.
	ContextNameID int
}

var (
	// ProfileWeb is the desktop browser client.
	ProfileWeb = ClientProfile{
		Name:          "WEB",
		Version:       "2.20240101.00.00",
		ContextNameID: 1,
	}
	// ProfileAndroid is the mobile app client. It tends to receive direct
	// stream URLs when the web client gets ciphered ones.
	ProfileAndroid = ClientProfile{
		Name:              "ANDROID",
		Version:           "19.09.37",
		UserAgent:         "com.google.android.youtube/19.09.37 (Linux; U; Android 11) gzip",
		AndroidSDKVersion: 30,
		ContextNameID:     3,
	}
)

// LookupProfile returns the built-in profile with the given name.
func LookupProfile(name string) (ClientProfile, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case ProfileWeb.Name:
		return ProfileWeb, nil
	case ProfileAndroid.Name:
		return ProfileAndroid, nil
	default:
		return ClientProfile{}, fmt.Errorf("innertube: unknown client profile %q", name)
	}
}

// LookupProfiles resolves names in order.
func LookupProfiles(names []string) ([]ClientProfile, error) {
	profiles := make([]ClientProfile, 0, len(names))
	for _, name := range names {
		p, err := LookupProfile(name)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}
