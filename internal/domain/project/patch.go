package project

// Patch is a typed partial update. Nil fields are left unchanged.
type Patch struct {
	ProjectName        *string
	ProjectDescription *string
	FolderPath         *string
	FolderLink         *string
	ClientName         *string
	ClientPhone        *string
	ClientPhone2       *string
	ClientWhatsapp     *string
	ClientWhatsapp2    *string
	ClientEmail        *string
	Tasks              *[]SubTask
	WorkStatus         *WorkStatus
	Priority           *Priority
	Price              *float64
	Currency           *string
	IsPaid             *bool
	IsCompleted        *bool
}

func (p Patch) SetProjectName(v string) Patch        { p.ProjectName = &v; return p }
func (p Patch) SetProjectDescription(v string) Patch { p.ProjectDescription = &v; return p }
func (p Patch) SetFolderPath(v string) Patch         { p.FolderPath = &v; return p }
func (p Patch) SetFolderLink(v string) Patch         { p.FolderLink = &v; return p }
func (p Patch) SetClientName(v string) Patch         { p.ClientName = &v; return p }
func (p Patch) SetClientEmail(v string) Patch        { p.ClientEmail = &v; return p }
func (p Patch) SetWorkStatus(v WorkStatus) Patch     { p.WorkStatus = &v; return p }
func (p Patch) SetPriority(v Priority) Patch         { p.Priority = &v; return p }
func (p Patch) SetPrice(v float64) Patch             { p.Price = &v; return p }
func (p Patch) SetCurrency(v string) Patch           { p.Currency = &v; return p }
func (p Patch) SetPaid(v bool) Patch                 { p.IsPaid = &v; return p }
func (p Patch) SetCompleted(v bool) Patch            { p.IsCompleted = &v; return p }

// SetTasks replaces the sub-task list.
func (p Patch) SetTasks(v []SubTask) Patch {
	tasks := append([]SubTask(nil), v...)
	p.Tasks = &tasks
	return p
}

// SetContact replaces every contact channel.
func (p Patch) SetContact(c Contact) Patch {
	p.ClientPhone = &c.Phone
	p.ClientPhone2 = &c.Phone2
	p.ClientWhatsapp = &c.Whatsapp
	p.ClientWhatsapp2 = &c.Whatsapp2
	p.ClientEmail = &c.Email
	return p
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p == Patch{}
}

func (p Patch) apply(proj *Project) {
	setString(&proj.ProjectName, p.ProjectName)
	setString(&proj.ProjectDescription, p.ProjectDescription)
	setString(&proj.FolderPath, p.FolderPath)
	setString(&proj.FolderLink, p.FolderLink)
	setString(&proj.ClientName, p.ClientName)
	setString(&proj.ClientPhone, p.ClientPhone)
	setString(&proj.ClientPhone2, p.ClientPhone2)
	setString(&proj.ClientWhatsapp, p.ClientWhatsapp)
	setString(&proj.ClientWhatsapp2, p.ClientWhatsapp2)
	setString(&proj.ClientEmail, p.ClientEmail)
	setString(&proj.Currency, p.Currency)
	if p.Tasks != nil {
		proj.Tasks = append([]SubTask{}, (*p.Tasks)...)
	}
	if p.WorkStatus != nil {
		proj.WorkStatus = *p.WorkStatus
	}
	if p.Priority != nil {
		proj.Priority = *p.Priority
	}
	if p.Price != nil {
		proj.Price = *p.Price
	}
	if p.IsPaid != nil {
		proj.IsPaid = *p.IsPaid
	}
	if p.IsCompleted != nil {
		proj.IsCompleted = *p.IsCompleted
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
