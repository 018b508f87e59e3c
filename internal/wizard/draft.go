package wizard

import (
	"ProNetwork/pkg/errors"
)

// Role 是注册时可选的账号类型
type Role string

const (
	RoleEmployee   Role = "employee"
	RoleEmployer   Role = "employer"
	RoleFreelancer Role = "freelancer"
)

// Valid 判断 role 是否在允许的集合内
func (r Role) Valid() bool {
	switch r {
	case RoleEmployee, RoleEmployer, RoleFreelancer:
		return true
	default:
		return false
	}
}

// 表单字段名，与前端提交的 key 保持一致
const (
	FieldUsername        = "username"
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirmPassword"
	FieldRole            = "role"
	FieldFirstName       = "first_name"
	FieldLastName        = "last_name"
	FieldMobileNumber    = "mobile_number"
	FieldLocation        = "location"
	FieldBio             = "bio"
	FieldWebsite         = "website"
	FieldLinkedIn        = "linkedin"
	FieldGitHub          = "github"
	FieldTwitter         = "twitter"
	FieldSkills          = "skills"
	FieldExperience      = "experience"
)

// Fields 按表单顺序列出所有字段
var Fields = []string{
	FieldUsername, FieldEmail, FieldPassword, FieldConfirmPassword, FieldRole,
	FieldFirstName, FieldLastName, FieldMobileNumber, FieldLocation, FieldBio,
	FieldWebsite, FieldLinkedIn, FieldGitHub, FieldTwitter, FieldSkills, FieldExperience,
}

// Draft 是注册向导收集中的表单内容，所有字段都是字符串，空串表示未填写
type Draft struct {
	Username        string `json:"username" msgpack:"username"`
	Email           string `json:"email" msgpack:"email"`
	Password        string `json:"password" msgpack:"password"`
	ConfirmPassword string `json:"confirmPassword" msgpack:"confirm_password"`
	Role            Role   `json:"role" msgpack:"role"`
	FirstName       string `json:"first_name" msgpack:"first_name"`
	LastName        string `json:"last_name" msgpack:"last_name"`
	MobileNumber    string `json:"mobile_number" msgpack:"mobile_number"`
	Location        string `json:"location" msgpack:"location"`
	Bio             string `json:"bio" msgpack:"bio"`
	Website         string `json:"website" msgpack:"website"`
	LinkedIn        string `json:"linkedin" msgpack:"linkedin"`
	GitHub          string `json:"github" msgpack:"github"`
	Twitter         string `json:"twitter" msgpack:"twitter"`
	Skills          string `json:"skills" msgpack:"skills"`
	Experience      string `json:"experience" msgpack:"experience"`
}

// NewDraft 返回空表单，role 默认 employee
func NewDraft() Draft {
	return Draft{Role: RoleEmployee}
}

func (d *Draft) field(name string) (*string, bool) {
	switch name {
	case FieldUsername:
		return &d.Username, true
	case FieldEmail:
		return &d.Email, true
	case FieldPassword:
		return &d.Password, true
	case FieldConfirmPassword:
		return &d.ConfirmPassword, true
	case FieldFirstName:
		return &d.FirstName, true
	case FieldLastName:
		return &d.LastName, true
	case FieldMobileNumber:
		return &d.MobileNumber, true
	case FieldLocation:
		return &d.Location, true
	case FieldBio:
		return &d.Bio, true
	case FieldWebsite:
		return &d.Website, true
	case FieldLinkedIn:
		return &d.LinkedIn, true
	case FieldGitHub:
		return &d.GitHub, true
	case FieldTwitter:
		return &d.Twitter, true
	case FieldSkills:
		return &d.Skills, true
	case FieldExperience:
		return &d.Experience, true
	default:
		return nil, false
	}
}

// Set 修改单个字段，其它字段保持不变
func (d *Draft) Set(name, value string) error {
	if name == FieldRole {
		role := Role(value)
		if !role.Valid() {
			return errors.InvalidRole
		}
		d.Role = role
		return nil
	}

	ptr, ok := d.field(name)
	if !ok {
		return errors.UnknownField.WithMessage("Unknown field: " + name)
	}
	*ptr = value
	return nil
}

// Get 读取单个字段
func (d Draft) Get(name string) (string, bool) {
	if name == FieldRole {
		return string(d.Role), true
	}
	ptr, ok := d.field(name)
	if !ok {
		return "", false
	}
	return *ptr, true
}

// Redacted 返回隐去两个密码字段的副本，用于回显给前端
func (d Draft) Redacted() Draft {
	d.Password = ""
	d.ConfirmPassword = ""
	return d
}

// RegistrationBody 是提交给后端注册接口的请求体，不包含 confirmPassword
type RegistrationBody struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	MobileNumber string `json:"mobile_number"`
	Role         Role   `json:"role"`
	Bio          string `json:"bio"`
	Location     string `json:"location"`
	Website      string `json:"website"`
	LinkedIn     string `json:"linkedin"`
	GitHub       string `json:"github"`
	Twitter      string `json:"twitter"`
	Skills       string `json:"skills"`
	Experience   string `json:"experience"`
}

// Body 把表单转换为注册请求体
func (d Draft) Body() RegistrationBody {
	return RegistrationBody{
		Username:     d.Username,
		Email:        d.Email,
		Password:     d.Password,
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		MobileNumber: d.MobileNumber,
		Role:         d.Role,
		Bio:          d.Bio,
		Location:     d.Location,
		Website:      d.Website,
		LinkedIn:     d.LinkedIn,
		GitHub:       d.GitHub,
		Twitter:      d.Twitter,
		Skills:       d.Skills,
		Experience:   d.Experience,
	}
}
