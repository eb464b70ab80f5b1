package converter

import (
	"swasth-sathi/internal/delivery/dto"
	"swasth-sathi/internal/domain/entity"
)

func ChatRequestToMessages(req *dto.ChatRequest) []entity.ChatMessage {
	messages := make([]entity.ChatMessage, len(req.Messages))
	for i, m := range req.Messages {
		messages[i] = entity.ChatMessage{Role: entity.ChatRole(m.Role), Content: m.Content}
	}
	return messages
}
