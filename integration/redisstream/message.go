package redisstream

// Message is one value observed on, or destined for, a Redis pub/sub
// channel.
type Message struct {
	Channel string `json:"channel"`
	Payload string `json:"payload"`
}
