package wizard

import (
	"unicode/utf8"

	"ProNetwork/pkg/errors"
)

const (
	FirstStep  = 1
	LastStep   = 3
	TotalSteps = LastStep

	MinPasswordLength = 8
)

// Reason 是某一步校验失败的原因
type Reason string

const (
	ReasonFieldsMissing    Reason = "FieldsMissing"
	ReasonPasswordMismatch Reason = "PasswordMismatch"
	ReasonPasswordTooShort Reason = "PasswordTooShort"
	ReasonInvalidStep      Reason = "InvalidStep"
)

// GateResult 是 Validate 的结果，OK 为 false 时 Reason 非空
type GateResult struct {
	Reason Reason
	OK     bool
}

func pass() GateResult { return GateResult{OK: true} }

func fail(r Reason) GateResult { return GateResult{Reason: r} }

// Err 把失败原因转换成带用户提示语的业务错误，通过时返回 nil
func (g GateResult) Err() error {
	if g.OK {
		return nil
	}

	switch g.Reason {
	case ReasonFieldsMissing:
		return errors.FieldsMissing
	case ReasonPasswordMismatch:
		return errors.PasswordMismatch
	case ReasonPasswordTooShort:
		return errors.PasswordTooShort
	default:
		return errors.WizardStepInvalid
	}
}

// Validate 判断表单是否可以离开 step，不修改任何状态
//
// 第一步依次检查：必填项、两次密码一致、密码长度，先失败的先返回。
// 第二步只检查姓名和手机号。第三步全部可选。
func Validate(d Draft, step int) GateResult {
	switch step {
	case 1:
		if d.Username == "" || d.Email == "" || d.Password == "" || d.ConfirmPassword == "" {
			return fail(ReasonFieldsMissing)
		}
		if d.Password != d.ConfirmPassword {
			return fail(ReasonPasswordMismatch)
		}
		if utf8.RuneCountInString(d.Password) < MinPasswordLength {
			return fail(ReasonPasswordTooShort)
		}
		return pass()
	case 2:
		if d.FirstName == "" || d.LastName == "" || d.MobileNumber == "" {
			return fail(ReasonFieldsMissing)
		}
		return pass()
	case 3:
		return pass()
	default:
		return fail(ReasonInvalidStep)
	}
}
