package hal

import "ina260-go/bus"

// Opaque-topic helpers

func T(tokens ...bus.Token) bus.Topic { return bus.T(tokens...) }

func topicHALState() bus.Topic { return T("hal", "state") }

// hal/dev/<id>/...
func devBase(id string) bus.Topic { return T("hal", "dev", id) }

func TopicInfo(id string) bus.Topic   { return devBase(id).Append("info") }
func TopicStatus(id string) bus.Topic { return devBase(id).Append("status") }

// hal/dev/<id>/attr/<name>/value (retained, poller output)
func TopicAttrValue(id, name string) bus.Topic {
	return devBase(id).Append("attr", name, "value")
}

// hal/dev/<id>/attr/<name>/read (request/reply)
func TopicAttrRead(id, name string) bus.Topic {
	return devBase(id).Append("attr", name, "read")
}

func attrReadWildcard() bus.Topic { return T("hal", "dev", "+", "attr", "+", "read") }

// hal/ctrl/<verb>
func TopicCtrl(verb string) bus.Topic { return T("hal", "ctrl", verb) }

func ctrlWildcard() bus.Topic { return T("hal", "ctrl", "+") }
