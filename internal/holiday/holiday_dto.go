package holiday

type CreateHolidayRequest struct {
	Date string `json:"date" binding:"required,datetime=2006-01-02"`
	Name string `json:"name" binding:"required,min=2,max=255"`
}

type HolidayResponse struct {
	ID     string `json:"id"`
	Date   string `json:"date"`
	Name   string `json:"name"`
	Source string `json:"source"`
}

func mapToResponse(h Holiday) HolidayResponse {
	return HolidayResponse{
		ID:     h.ID.String(),
		Date:   h.Date.Format("2006-01-02"),
		Name:   h.Name,
		Source: h.Source,
	}
}

func mapToListResponse(rows []Holiday) []HolidayResponse {
	resp := make([]HolidayResponse, 0, len(rows))
	for _, h := range rows {
		resp = append(resp, mapToResponse(h))
	}
	return resp
}
