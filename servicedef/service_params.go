// Package servicedef describes the wire contract of the service under test: endpoint names, form
// field names, payload keys, and the JSON shapes of the objects the harness reads back.
package servicedef

// Endpoints. Every call is a POST to <base URL>/<endpoint>.
const (
	EndpointCreateUser          = "create-user"
	EndpointDeleteUser          = "delete-user"
	EndpointGetUser             = "get-user"
	EndpointLogin               = "login"
	EndpointLogout              = "logout"
	EndpointAddPost             = "add-post"
	EndpointGetPost             = "get-post"
	EndpointDeletePost          = "delete-post"
	EndpointAddUpvote           = "add-upvote"
	EndpointDeleteUpvote        = "delete-upvote"
	EndpointAddFollow           = "add-follow"
	EndpointDeleteFollow        = "delete-follow"
	EndpointAddConversation     = "add-conversation"
	EndpointAddAPNsToken        = "add-apns-token"
	EndpointSearchPostsTrending = "search-posts-trending"
)

// Form fields.
const (
	FieldAuthUsername = "auth_username"
	FieldAuthPassword = "auth_password"
	FieldID           = "id"
	FieldIDs          = "ids"
	FieldUsername     = "username"
	FieldPassword     = "password"
	FieldName         = "name"
	FieldEmail        = "email"
	FieldBio          = "bio"
	FieldLatitude     = "latitude"
	FieldLongitude    = "longitude"
	FieldAvatar       = "avatar"
	FieldContent      = "content"
	FieldTitle        = "title"
	FieldParentIDs    = "parent_ids"
	FieldImage        = "image"
	FieldRiff         = "riff"
	FieldTags         = "tags"
	FieldToken        = "token"
	FieldUUID         = "uuid"
)

// Payload keys in successful responses.
const (
	KeyUser         = "user"
	KeyPost         = "post"
	KeyPosts        = "posts"
	KeyConversation = "conversation"
)

type User struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Bio      string `json:"bio"`

	// Password is never sent by the service; fixtures fill it in so tests can log in.
	Password string `json:"-"`
}

type Riff struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Duration int    `json:"duration"`
}

type Post struct {
	ID        int    `json:"id"`
	UserID    int    `json:"user_id"`
	ParentIDs []int  `json:"parent_ids,omitempty"`
	Content   string `json:"content"`
	ImageURL  string `json:"image_url,omitempty"`
	Riff      *Riff  `json:"riff,omitempty"`
	Upvotes   int    `json:"upvotes"`
}

type Conversation struct {
	ID      int   `json:"id"`
	UserIDs []int `json:"user_ids"`
}
