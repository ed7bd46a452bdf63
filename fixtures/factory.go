package fixtures

import (
	"context"
	"fmt"
	"math/rand"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ryffproject/api-contract-tests/framework"
	"github.com/ryffproject/api-contract-tests/framework/harness"
	"github.com/ryffproject/api-contract-tests/servicedef"
)

// Password is the password of every user created by a Factory.
const Password = "password"

const (
	twoWordNameChance = 0.7
	capitalizeChance  = 0.7
	bioChance         = 0.3
	maxBioWords       = 10
	maxRiffTitleWords = 3
	postBodyWords     = 10
	emailDomain       = "@example.com"
	fixtureLatitude   = "50"
	fixtureLongitude  = "50"
)

// PostOptions controls what goes into a post created by MakePost.
type PostOptions struct {
	ParentIDs []int
	Tags      []string
	Mentions  []string
	UseImage  bool
}

// Factory creates synthetic users and posts through the service's own public API.
//
// The factory has its own session with the service, separate from the session tests use, so
// logging in as a fixture's author never changes who the test is logged in as.
type Factory struct {
	words  *WordSource
	media  MediaPool
	rng    *rand.Rand
	client *harness.Client
	caser  cases.Caser
}

func NewFactory(words *WordSource, media MediaPool, rng *rand.Rand, client *harness.Client) *Factory {
	return &Factory{
		words:  words,
		media:  media,
		rng:    rng,
		client: client.NewSession(),
		caser:  cases.Title(language.English),
	}
}

// WithLogger returns a factory that shares this one's words, randomness and session, but logs its
// service traffic to the given logger.
func (f *Factory) WithLogger(logger framework.Logger) *Factory {
	f1 := *f
	f1.client = f.client.WithLogger(logger)
	return &f1
}

// MakeUser creates a user with a random name, a unique username and email, and sometimes a bio.
// If useAvatar is true and there are sample avatars, one of them is uploaded.
func (f *Factory) MakeUser(ctx context.Context, useAvatar bool) (servicedef.User, error) {
	nameWords := 1
	if f.chance(twoWordNameChance) {
		nameWords = 2
	}
	name := f.words.Words(nameWords)
	if f.chance(capitalizeChance) {
		name = f.caser.String(name)
	}

	var avatar string
	if useAvatar {
		avatar = pick(f.rng, f.media.Avatars)
	}

	username, err := f.words.UniqueWord()
	if err != nil {
		return servicedef.User{}, err
	}
	emailUser, err := f.words.UniqueWord()
	if err != nil {
		return servicedef.User{}, err
	}

	var bio string
	if f.chance(bioChance) {
		bio = f.words.Words(1 + f.rng.Intn(maxBioWords))
	}

	fields := url.Values{
		servicedef.FieldUsername:  {username},
		servicedef.FieldPassword:  {Password},
		servicedef.FieldName:      {name},
		servicedef.FieldEmail:     {emailUser + emailDomain},
		servicedef.FieldBio:       {bio},
		servicedef.FieldLatitude:  {fixtureLatitude},
		servicedef.FieldLongitude: {fixtureLongitude},
	}
	files := map[string]string{}
	if avatar != "" {
		files[servicedef.FieldAvatar] = avatar
	}

	var user servicedef.User
	if err := f.create(ctx, "user", servicedef.EndpointCreateUser, fields, files, servicedef.KeyUser, &user); err != nil {
		return servicedef.User{}, err
	}
	user.Password = Password
	return user, nil
}

// MakePost creates a post by author. The body is a mention for each of opts.Mentions, ten random
// words, then a hashtag for each of opts.Tags. A sample riff is attached whenever one is available,
// and a sample image if opts.UseImage is set.
func (f *Factory) MakePost(ctx context.Context, author servicedef.User, opts PostOptions) (servicedef.Post, error) {
	var content strings.Builder
	for _, username := range opts.Mentions {
		content.WriteString("@" + username + " ")
	}
	content.WriteString(f.words.Words(postBodyWords))
	for _, tag := range opts.Tags {
		content.WriteString(" #" + tag)
	}

	files := map[string]string{}
	if opts.UseImage {
		if image := pick(f.rng, f.media.PostImages); image != "" {
			files[servicedef.FieldImage] = image
		}
	}

	fields := url.Values{servicedef.FieldContent: {content.String()}}
	riffTitle := f.caser.String(f.words.Words(1 + f.rng.Intn(maxRiffTitleWords)))
	if riff := pick(f.rng, f.media.Riffs); riff != "" {
		files[servicedef.FieldRiff] = riff
		fields.Set(servicedef.FieldTitle, riffTitle)
	}
	if len(opts.ParentIDs) > 0 {
		ids := make([]string, 0, len(opts.ParentIDs))
		for _, id := range opts.ParentIDs {
			ids = append(ids, strconv.Itoa(id))
		}
		fields.Set(servicedef.FieldParentIDs, strings.Join(ids, ","))
	}

	if err := f.logIn(ctx, author); err != nil {
		return servicedef.Post{}, &FixtureCreationError{Kind: "post", Err: err}
	}
	var post servicedef.Post
	if err := f.create(ctx, "post", servicedef.EndpointAddPost, fields, files, servicedef.KeyPost, &post); err != nil {
		return servicedef.Post{}, err
	}
	return post, nil
}

// DeleteUser removes a user created by MakeUser, along with everything the service deletes with it.
func (f *Factory) DeleteUser(ctx context.Context, user servicedef.User) error {
	if err := f.logIn(ctx, user); err != nil {
		return err
	}
	resp, err := f.client.Call(ctx, servicedef.EndpointDeleteUser, nil, nil)
	if err != nil {
		return err
	}
	if message, isError := resp.ErrorMessage(); isError {
		return fmt.Errorf("could not delete user %q: service said %q", user.Username, message)
	}
	return nil
}

func (f *Factory) logIn(ctx context.Context, user servicedef.User) error {
	resp, err := f.client.Call(ctx, servicedef.EndpointLogin, url.Values{
		servicedef.FieldAuthUsername: {user.Username},
		servicedef.FieldAuthPassword: {user.Password},
	}, nil)
	if err != nil {
		return err
	}
	if !resp.Success() {
		return fmt.Errorf("could not log in as %q: %s", user.Username, resp)
	}
	return nil
}

func (f *Factory) create(
	ctx context.Context,
	kind, endpoint string,
	fields url.Values,
	files map[string]string,
	payloadKey string,
	dest interface{},
) error {
	resp, err := f.client.Call(ctx, endpoint, fields, files)
	if err != nil {
		return &FixtureCreationError{Kind: kind, Err: err}
	}
	if message, isError := resp.ErrorMessage(); isError {
		return &FixtureCreationError{Kind: kind, Message: message}
	}
	if err := resp.Decode(payloadKey, dest); err != nil {
		return &FixtureCreationError{Kind: kind, Err: err}
	}
	return nil
}

// chance returns true with probability p, using the same whole-percent resolution for every call
// so that a seeded source replays identically.
func (f *Factory) chance(p float64) bool {
	return f.rng.Intn(101) < int(p*100)
}
