package dto

import "ProNetwork/internal/wizard"

// ========== 注册向导 DTO ==========

// WizardView 向导状态视图，draft 中不包含两个密码字段
type WizardView struct {
	WizardID   string       `json:"wizard_id"`
	Draft      wizard.Draft `json:"draft"`
	Step       int          `json:"step"`
	TotalSteps int          `json:"total_steps"`
	Busy       bool         `json:"busy"`
	Submitted  bool         `json:"submitted"`
}

// SubmitResponse 注册成功后的响应
type SubmitResponse struct {
	Message  string `json:"message"`
	Redirect string `json:"redirect"`
}
