package domain

// SettingsOverrides carries caller-supplied settings; nil fields keep
// the defaults.
type SettingsOverrides struct {
	MaxParticipants  *int  `json:"maxParticipants"`
	AllowVideo       *bool `json:"allowVideo"`
	AllowAudio       *bool `json:"allowAudio"`
	AllowScreenShare *bool `json:"allowScreenShare"`
	AllowRecording   *bool `json:"allowRecording"`
	WaitingRoom      *bool `json:"waitingRoom"`
}

func (s Settings) Apply(o SettingsOverrides) Settings {
	if o.MaxParticipants != nil && *o.MaxParticipants > 0 {
		s.MaxParticipants = *o.MaxParticipants
	}
	if o.AllowVideo != nil {
		s.AllowVideo = *o.AllowVideo
	}
	if o.AllowAudio != nil {
		s.AllowAudio = *o.AllowAudio
	}
	if o.AllowScreenShare != nil {
		s.AllowScreenShare = *o.AllowScreenShare
	}
	if o.AllowRecording != nil {
		s.AllowRecording = *o.AllowRecording
	}
	if o.WaitingRoom != nil {
		s.WaitingRoom = *o.WaitingRoom
	}
	return s
}
