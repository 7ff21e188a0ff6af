package user

// ProfileUpdate carries the profile fields a user may edit. Nil pointers
// leave the existing value untouched.
type ProfileUpdate struct {
	Username   *string `json:"username"`
	Avatar     *string `json:"avatar"`
	IsStreamer *bool   `json:"isStreamer"`
}
