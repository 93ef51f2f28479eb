package extractor

// Record holds the fields extracted from one log line.
// Extraction never captures an empty value, so an empty slot means the
// field was absent from the line.
type Record struct {
	Timestamp       string `json:"timestamp,omitempty"`
	MessageCode     string `json:"message_code,omitempty"`
	Username        string `json:"username,omitempty"`
	MACAddress      string `json:"mac_address,omitempty"`
	FramedIP        string `json:"ip_address,omitempty"`
	NASIP           string `json:"nas_ip,omitempty"`
	AuthStatus      string `json:"auth_status,omitempty"`
	FailureReason   string `json:"failure_reason,omitempty"`
	EndpointProfile string `json:"endpoint_profile,omitempty"`
	DeviceType      string `json:"device_type,omitempty"`
	AuthProtocol    string `json:"auth_protocol,omitempty"`

	// MessageDescription is derived from MessageCode and set whenever it is.
	MessageDescription string `json:"message_description,omitempty"`

	// Source and LineNum locate the line the record came from.
	Source  string `json:"-"`
	LineNum int    `json:"-"`
}

func (r *Record) slot(f Field) *string {
	switch f {
	case FieldTimestamp:
		return &r.Timestamp
	case FieldMessageCode:
		return &r.MessageCode
	case FieldUsername:
		return &r.Username
	case FieldMACAddress:
		return &r.MACAddress
	case FieldFramedIP:
		return &r.FramedIP
	case FieldNASIP:
		return &r.NASIP
	case FieldAuthStatus:
		return &r.AuthStatus
	case FieldFailureReason:
		return &r.FailureReason
	case FieldEndpointProfile:
		return &r.EndpointProfile
	case FieldDeviceType:
		return &r.DeviceType
	case FieldAuthProtocol:
		return &r.AuthProtocol
	}
	return nil
}

// Get returns the value of f and whether it was extracted.
func (r *Record) Get(f Field) (string, bool) {
	p := r.slot(f)
	if p == nil || *p == "" {
		return "", false
	}
	return *p, true
}

// Set stores v in the slot for f. Unknown fields are ignored.
func (r *Record) Set(f Field, v string) {
	if p := r.slot(f); p != nil {
		*p = v
	}
}

// Fields returns the extracted fields in canonical order.
func (r *Record) Fields() []Field {
	var present []Field
	for _, f := range allFields {
		if _, ok := r.Get(f); ok {
			present = append(present, f)
		}
	}
	return present
}

// Len returns the number of extracted fields, not counting derived ones.
func (r *Record) Len() int {
	n := 0
	for _, f := range allFields {
		if _, ok := r.Get(f); ok {
			n++
		}
	}
	return n
}

// IsEmpty reports whether no field was extracted.
func (r *Record) IsEmpty() bool {
	return r.Len() == 0
}

// Values returns the record as a field name to value map, including
// message_description when set.
func (r *Record) Values() map[string]string {
	out := make(map[string]string, len(allFields)+1)
	for _, f := range allFields {
		if v, ok := r.Get(f); ok {
			out[string(f)] = v
		}
	}
	if r.MessageDescription != "" {
		out["message_description"] = r.MessageDescription
	}
	return out
}
