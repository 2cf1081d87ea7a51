package model

// StartPracticeRequest is the payload for starting a practice set.
type StartPracticeRequest struct {
	Size int `json:"size" binding:"required,min=1,max=1000"`
}

// AnswerRequest records an answer by the option's display position.
type AnswerRequest struct {
	Display *int `json:"display" binding:"required,min=0,max=25"`
}

// NavigateRequest moves the cursor to a position in the session order.
type NavigateRequest struct {
	Index *int `json:"index" binding:"required,min=0"`
}

// SubmitExamRequest submits the active exam.
// Bypass skips the flagged-question confirmation.
type SubmitExamRequest struct {
	Bypass bool `json:"bypass"`
}

// FinishPracticeRequest finishes a practice set.
// Confirm acknowledges that unanswered questions will count as unanswered.
type FinishPracticeRequest struct {
	Confirm bool `json:"confirm"`
}

// AllocationQuery previews a practice allocation.
type AllocationQuery struct {
	Size int `form:"size" json:"size" binding:"required,min=1,max=1000"`
}

// HistoryQuery pages through the history list.
type HistoryQuery struct {
	Page    int `form:"page" json:"page" binding:"omitempty,min=1,max=10000"`
	PerPage int `form:"per_page" json:"per_page" binding:"omitempty,min=1,max=100"`
}
