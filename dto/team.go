// file: dto/team.go
package dto

type CreateTeamReq struct {
	Name       string            `json:"name"`
	Leader     string            `json:"leader"`
	SubLeaders map[string]string `json:"subLeaders"`
	Color      string            `json:"color"`
}

type TeamPatch struct {
	Name       *string            `json:"name"`
	Leader     *string            `json:"leader"`
	SubLeaders *map[string]string `json:"subLeaders"`
	Color      *string            `json:"color"`
}
