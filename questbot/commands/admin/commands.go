package admin

import (
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/json"
)

var Commands = []discord.ApplicationCommandCreate{
	Dashboard,
	ManageQuest,
	GivePoints,
}

var Dashboard = discord.SlashCommandCreate{
	Name:                     "dashboard",
	Description:              "🛠️ Admin dashboard for the quest system",
	DefaultMemberPermissions: json.NewNullablePtr(discord.PermissionAdministrator),
}

var ManageQuest = discord.SlashCommandCreate{
	Name:                     "managequest",
	Description:              "🗂️ Edit, archive or remove a quest",
	DefaultMemberPermissions: json.NewNullablePtr(discord.PermissionAdministrator),
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:         "quest",
			Description:  "The quest to manage (search by title)",
			Required:     true,
			Autocomplete: true,
		},
	},
}

// isAdmin gates component and modal actions that outlive the slash
// command's own permission setting.
func isAdmin(member *discord.ResolvedMember) bool {
	return member != nil && member.Permissions.Has(discord.PermissionAdministrator)
}
