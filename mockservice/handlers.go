package mockservice

import (
	"net/http"
	"sort"
	"strings"

	"github.com/ryffproject/api-contract-tests/servicedef"
)

const (
	apnsTokenLength  = 64
	deviceUUIDLength = 36
)

func success(message string, extra map[string]interface{}) map[string]interface{} {
	body := map[string]interface{}{"success": message}
	for k, v := range extra {
		body[k] = v
	}
	return body
}

func (s *Service) createUser(r *http.Request, _ *user) (map[string]interface{}, error) {
	form := r.PostForm
	username := strings.TrimSpace(form.Get(servicedef.FieldUsername))
	password := form.Get(servicedef.FieldPassword)
	email := strings.TrimSpace(form.Get(servicedef.FieldEmail))
	if username == "" || password == "" || email == "" {
		return nil, errorResponse("Missing required information.")
	}
	for _, u := range s.users {
		if u.Username == username {
			return nil, errorResponse("Username already taken.")
		}
		if u.Email == email {
			return nil, errorResponse("Email already in use.")
		}
	}
	u := &user{
		User: servicedef.User{
			ID:       s.nextID(),
			Name:     strings.TrimSpace(form.Get(servicedef.FieldName)),
			Username: username,
			Email:    email,
			Bio:      strings.TrimSpace(form.Get(servicedef.FieldBio)),
		},
		password: password,
	}
	if err := s.saveUpload(r, servicedef.FieldAvatar, "avatars", u.ID); err != nil {
		return nil, err
	}
	s.users[u.ID] = u
	return success("Welcome to Ryff, "+u.Username+"!", map[string]interface{}{
		servicedef.KeyUser: u.User,
		sessionCookie:      s.startSession(u.ID),
	}), nil
}

func (s *Service) deleteUser(_ *http.Request, current *user) (map[string]interface{}, error) {
	delete(s.users, current.ID)
	for id, p := range s.posts {
		if p.UserID == current.ID {
			delete(s.posts, id)
		}
	}
	for id, userID := range s.sessions {
		if userID == current.ID {
			delete(s.sessions, id)
		}
	}
	return success("Account deleted.", nil), nil
}

func (s *Service) getUser(r *http.Request, current *user) (map[string]interface{}, error) {
	target := current
	if id := formInt(r, servicedef.FieldID); id != 0 {
		target = s.users[id]
	}
	if target == nil {
		return nil, errorResponse("Invalid user id.")
	}
	return success("Retrieved user.", map[string]interface{}{servicedef.KeyUser: target.User}), nil
}

func (s *Service) login(r *http.Request, _ *user) (map[string]interface{}, error) {
	u := s.findByUsername(r.PostForm.Get(servicedef.FieldAuthUsername))
	if u == nil || u.password != r.PostForm.Get(servicedef.FieldAuthPassword) {
		return nil, errorResponse("Invalid username or password.")
	}
	return success("Logged in as "+u.Username+".", map[string]interface{}{
		servicedef.KeyUser: u.User,
		sessionCookie:      s.startSession(u.ID),
	}), nil
}

func (s *Service) logout(r *http.Request, _ *user) (map[string]interface{}, error) {
	if c, err := r.Cookie(sessionCookie); err == nil {
		delete(s.sessions, c.Value)
	}
	return success("Logged out.", map[string]interface{}{sessionCookie: "deleted"}), nil
}

func (s *Service) addPost(r *http.Request, current *user) (map[string]interface{}, error) {
	form := r.PostForm
	content := strings.TrimSpace(form.Get(servicedef.FieldContent))
	title := strings.TrimSpace(form.Get(servicedef.FieldTitle))
	hasRiff := hasUpload(r, servicedef.FieldRiff) && title != ""
	if content == "" && !hasRiff {
		return nil, errorResponse("No post to add!")
	}
	p := &post{
		Post: servicedef.Post{
			ID:      s.nextID(),
			UserID:  current.ID,
			Content: content,
		},
		voters: map[int]bool{current.ID: true},
	}
	for _, id := range formIntList(r, servicedef.FieldParentIDs) {
		if _, ok := s.posts[id]; ok {
			p.ParentIDs = append(p.ParentIDs, id)
		}
	}
	if hasUpload(r, servicedef.FieldImage) {
		if err := s.saveUpload(r, servicedef.FieldImage, "posts", p.ID); err != nil {
			return nil, err
		}
		p.ImageURL = "posts/" + r.MultipartForm.File[servicedef.FieldImage][0].Filename
	}
	if hasRiff {
		riffID := s.nextID()
		if err := s.saveUpload(r, servicedef.FieldRiff, "riffs", riffID); err != nil {
			return nil, err
		}
		p.Riff = &servicedef.Riff{ID: riffID, Title: title}
	}
	p.Upvotes = len(p.voters)
	s.posts[p.ID] = p
	return success("Posted.", map[string]interface{}{servicedef.KeyPost: p.Post}), nil
}

func (s *Service) getPost(r *http.Request, _ *user) (map[string]interface{}, error) {
	p, ok := s.posts[formInt(r, servicedef.FieldID)]
	if !ok {
		return nil, errorResponse("No post with that id.")
	}
	return success("Retrieved post.", map[string]interface{}{servicedef.KeyPost: p.Post}), nil
}

func (s *Service) deletePost(r *http.Request, current *user) (map[string]interface{}, error) {
	id := formInt(r, servicedef.FieldID)
	p, ok := s.posts[id]
	if !ok || p.UserID != current.ID {
		return nil, errorResponse("No post to delete!")
	}
	delete(s.posts, id)
	return success("Post deleted.", nil), nil
}

func (s *Service) setUpvote(r *http.Request, current *user, up bool) (map[string]interface{}, error) {
	p, ok := s.posts[formInt(r, servicedef.FieldID)]
	if !ok {
		return nil, errorResponse("No post with that id.")
	}
	if up {
		p.voters[current.ID] = true
	} else {
		delete(p.voters, current.ID)
	}
	p.Upvotes = len(p.voters)
	return success("Upvote updated.", map[string]interface{}{servicedef.KeyPost: p.Post}), nil
}

func (s *Service) addUpvote(r *http.Request, current *user) (map[string]interface{}, error) {
	return s.setUpvote(r, current, true)
}

func (s *Service) deleteUpvote(r *http.Request, current *user) (map[string]interface{}, error) {
	return s.setUpvote(r, current, false)
}

func (s *Service) followTarget(r *http.Request, current *user) (*user, error) {
	target, ok := s.users[formInt(r, servicedef.FieldID)]
	if !ok || target.ID == current.ID {
		return nil, errorResponse("Invalid user to follow.")
	}
	return target, nil
}

func (s *Service) addFollow(r *http.Request, current *user) (map[string]interface{}, error) {
	target, err := s.followTarget(r, current)
	if err != nil {
		return nil, err
	}
	s.follows[[2]int{current.ID, target.ID}] = true
	return success("Now following "+target.Username+".", map[string]interface{}{servicedef.KeyUser: target.User}), nil
}

func (s *Service) deleteFollow(r *http.Request, current *user) (map[string]interface{}, error) {
	target, err := s.followTarget(r, current)
	if err != nil {
		return nil, err
	}
	delete(s.follows, [2]int{current.ID, target.ID})
	return success("No longer following "+target.Username+".", map[string]interface{}{servicedef.KeyUser: target.User}), nil
}

func (s *Service) addConversation(r *http.Request, current *user) (map[string]interface{}, error) {
	members := []int{current.ID}
	for _, id := range formIntList(r, servicedef.FieldIDs) {
		if _, ok := s.users[id]; ok && id != current.ID {
			members = append(members, id)
		}
	}
	if len(members) < 2 {
		return nil, errorResponse("Not enough users for a conversation.")
	}
	c := servicedef.Conversation{ID: s.nextID(), UserIDs: members}
	s.conversations = append(s.conversations, c)
	return success("Conversation created.", map[string]interface{}{servicedef.KeyConversation: c}), nil
}

func (s *Service) addAPNsToken(r *http.Request, current *user) (map[string]interface{}, error) {
	token := r.PostForm.Get(servicedef.FieldToken)
	deviceUUID := r.PostForm.Get(servicedef.FieldUUID)
	if len(token) != apnsTokenLength || len(deviceUUID) != deviceUUIDLength {
		return nil, errorResponse("Invalid push token.")
	}
	s.apnsTokens[current.ID] = append(s.apnsTokens[current.ID], token)
	return success("Push token registered.", nil), nil
}

func (s *Service) searchPostsTrending(r *http.Request, _ *user) (map[string]interface{}, error) {
	var tags []string
	for _, tag := range strings.Split(r.PostForm.Get(servicedef.FieldTags), ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, "#"+strings.TrimPrefix(tag, "#"))
		}
	}
	posts := []servicedef.Post{}
	for _, p := range s.posts {
		if matchesAnyTag(p.Content, tags) {
			posts = append(posts, p.Post)
		}
	}
	sort.Slice(posts, func(i, j int) bool {
		if posts[i].Upvotes != posts[j].Upvotes {
			return posts[i].Upvotes > posts[j].Upvotes
		}
		return posts[i].ID > posts[j].ID
	})
	return success("Retrieved posts.", map[string]interface{}{servicedef.KeyPosts: posts}), nil
}

func matchesAnyTag(content string, tags []string) bool {
	if len(tags) == 0 {
		return true
	}
	for _, word := range strings.Fields(content) {
		for _, tag := range tags {
			if strings.EqualFold(word, tag) {
				return true
			}
		}
	}
	return false
}
