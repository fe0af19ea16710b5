package repository

import "github.com/MassterJoe/alertMe9Ja/internal/models"

// mediaArgs splits m into nullable (content type, payload) query arguments.
func mediaArgs(m *models.Media) (*string, []byte) {
	if m == nil || len(m.Data) == 0 {
		return nil, nil
	}
	contentType := m.ContentType
	return &contentType, m.Data
}

func scanMedia(contentType *string, data []byte) *models.Media {
	if len(data) == 0 {
		return nil
	}
	m := &models.Media{Data: data}
	if contentType != nil {
		m.ContentType = *contentType
	}
	return m
}
