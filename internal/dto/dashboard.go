package dto

// ClassRevenue is one row of the dashboard class ranking.
type ClassRevenue struct {
	ClassID         string  `json:"classId"`
	ClassName       string  `json:"className"`
	TotalCollection float64 `json:"totalCollection"`
	TotalStudents   int     `json:"totalStudents"`
}

// AdminDashboardResponse summarises one month for the admin landing page.
type AdminDashboardResponse struct {
	Month             string         `json:"month"`
	Period            Period         `json:"period"`
	TotalCollection   float64        `json:"totalCollection"`
	TotalStudents     int            `json:"totalStudents"`
	TotalNetPay       float64        `json:"totalNetPay"`
	InstituteRetained float64        `json:"instituteRetained"`
	TeacherCount      int            `json:"teacherCount"`
	TopClasses        []ClassRevenue `json:"topClasses"`
}
