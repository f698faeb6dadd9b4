package transfer

type ContentCreation struct {
	Title       string `json:"title" form:"title"`
	Description string `json:"description" form:"description"`
}

type ScheduleCreation struct {
	ContentID     int64  `json:"content_id" form:"content_id"`
	ScheduledTime string `json:"scheduled_time" form:"scheduled_time"`
	Caption       string `json:"caption" form:"caption"`
}
