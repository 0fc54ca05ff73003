// file: dto/student.go
package dto

type CreateStudentReq struct {
	Name            string  `json:"name"`
	AdmissionNumber string  `json:"admissionNumber"`
	Class           string  `json:"class"`
	Section         string  `json:"section"`
	Pool            *string `json:"pool"`
	IsCalled        *bool   `json:"isCalled"`
	TeamID          *string `json:"teamId"`
}

// StudentPatch carries only the fields present in the request body.
type StudentPatch struct {
	Name            *string          `json:"name"`
	AdmissionNumber *string          `json:"admissionNumber"`
	Class           *string          `json:"class"`
	Section         *string          `json:"section"`
	Pool            Optional[string] `json:"pool"`
	IsCalled        *bool            `json:"isCalled"`
	TeamID          Optional[string] `json:"teamId"`
}

type AssignToPoolReq struct {
	StudentIDs []string `json:"studentIds"`
	PoolName   string   `json:"poolName"`
}

// ImportStudent is one entry of an uploaded students file. Team and called
// state in the file are ignored. An absent pool leaves an existing
// student's pool unchanged.
type ImportStudent struct {
	Name            string           `json:"name"`
	AdmissionNumber string           `json:"admissionNumber"`
	Class           string           `json:"class"`
	Section         string           `json:"section"`
	Pool            Optional[string] `json:"pool"`
}
