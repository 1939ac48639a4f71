package api

import (
	"church-attendance/internal/models"

	"github.com/gofiber/fiber/v2"
)

func (s *Server) listUsers(c *fiber.Ctx) error {
	var (
		users []*models.User
		err   error
	)
	if raw := c.Query("role"); raw != "" {
		role, ok := models.ParseRole(raw)
		if !ok {
			return Error(c, fiber.StatusBadRequest, "Unknown role")
		}
		users, err = s.svc.Users.GetByRoles(role)
	} else {
		users, err = s.svc.Users.GetAllUsers()
	}
	if err != nil {
		return ServiceError(c, err)
	}
	return Success(c, "Users loaded", users)
}

func (s *Server) listInvitations(c *fiber.Ctx) error {
	invitations, err := s.svc.Invitations.ListPending()
	if err != nil {
		return ServiceError(c, err)
	}
	return Success(c, "Pending invitations loaded", invitations)
}

func (s *Server) createInvitation(c *fiber.Ctx) error {
	var req InvitationRequest
	if ok, err := s.bind(c, &req); !ok {
		return err
	}

	invitation, err := s.svc.Invitations.Invite(req.InviterID, req.Email, models.Role(req.Role))
	if err != nil {
		return ServiceError(c, err)
	}
	return SuccessWithCode(c, fiber.StatusCreated, "Invitation created", fiber.Map{
		"invitation": invitation,
		"link":       s.svc.Invitations.Link(invitation),
	})
}

func (s *Server) acceptInvitation(c *fiber.Ctx) error {
	var req AcceptInvitationRequest
	if len(c.Body()) > 0 {
		if ok, err := s.bind(c, &req); !ok {
			return err
		}
	}

	user, err := s.svc.Invitations.Accept(c.Params("token"), req.ChatID, req.Username, req.FirstName, req.LastName)
	if err != nil {
		return ServiceError(c, err)
	}
	return Success(c, "Invitation accepted", user)
}
