package dto

// ImportReportDTO - итог импорта. Ключи ответа фиксированы клиентским контрактом.
type ImportReportDTO struct {
	Created int      `json:"Создан"`
	Errors  []string `json:"Ошибки"`
}

type ImportErrorDTO struct {
	Error string `json:"Ошибка"`
}

type MessageDTO struct {
	Message string `json:"message"`
}
