package mqtt

// TopicPrefix is the root of every ledbetter topic.
const TopicPrefix = "ledbetter"

// Topics builds ledbetter topic names.
type Topics struct{}

// Status is the retained online/offline topic, also used for the LWT.
func (Topics) Status() string {
	return TopicPrefix + "/status"
}

// Frame carries rendered frames.
func (Topics) Frame() string {
	return TopicPrefix + "/frame"
}

// Params carries the retained current parameter values.
func (Topics) Params() string {
	return TopicPrefix + "/params"
}

// CommandParams receives parameter writes.
func (Topics) CommandParams() string {
	return TopicPrefix + "/command/params"
}

// AllCommands matches every command topic.
func (Topics) AllCommands() string {
	return TopicPrefix + "/command/#"
}
