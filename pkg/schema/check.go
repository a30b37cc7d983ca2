package schema

// Check validates raw against t and returns the value the runtime should
// keep. Types implementing Coercer decide the returned value; all others
// return raw unchanged. The returned error is always a *ValidationError.
func Check(t Type, raw any) (any, error) {
	if t == nil {
		return raw, nil
	}
	if c, ok := t.(Coercer); ok {
		v, err := c.Coerce(raw)
		if err != nil {
			return nil, asValidation(err, raw)
		}
		return v, nil
	}
	if err := t.Validate(raw); err != nil {
		return nil, asValidation(err, raw)
	}
	return raw, nil
}

// CheckKey is Check with the failing key recorded on the error.
func CheckKey(key string, t Type, raw any) (any, error) {
	v, err := Check(t, raw)
	if err != nil {
		ve := err.(*ValidationError)
		return nil, &ValidationError{Key: key, Reason: ve.Reason, Value: ve.Value}
	}
	return v, nil
}

func asValidation(err error, raw any) error {
	if ve, ok := err.(*ValidationError); ok {
		return ve
	}
	return &ValidationError{Reason: err.Error(), Value: raw}
}
